package query

import (
	"embed"
	"fmt"

	"restlab/dao/model"
	"restlab/logutils"
	"restlab/util"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed samples/*.yaml
var samples embed.FS

type personSample struct {
	Identifier  string `yaml:"identifier"`
	Email       string `yaml:"email"`
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	Phone       string `yaml:"phone"`
	Address     string `yaml:"address"`
	Description string `yaml:"description"`
	Password    string `yaml:"password"`
}

func (p personSample) person() (model.Person, error) {
	hashed, err := util.HashPassword(p.Password)
	if err != nil {
		return model.Person{}, err
	}
	return model.Person{
		Identifier:  p.Identifier,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		Address:     p.Address,
		Description: p.Description,
		Password:    hashed,
	}, nil
}

type tenantSample struct {
	personSample `yaml:",inline"`
	Landlord     string `yaml:"landlord"`
}

type flatSample struct {
	Identifier  string `yaml:"identifier"`
	Address     string `yaml:"address"`
	Description string `yaml:"description"`
	Landlord    string `yaml:"landlord"`
}

type agreementSample struct {
	Identifier      string            `yaml:"identifier"`
	SignDate        model.Date        `yaml:"sign_date"`
	DateFrom        model.Date        `yaml:"date_from"`
	DateTo          model.Date        `yaml:"date_to"`
	PriceValue      decimal.Decimal   `yaml:"price_value"`
	PricePeriod     model.PricePeriod `yaml:"price_period"`
	PaymentDeadline int               `yaml:"payment_deadline"`
	DepositValue    decimal.Decimal   `yaml:"deposit_value"`
	Description     string            `yaml:"description"`
	Flat            string            `yaml:"flat"`
	Tenant          string            `yaml:"tenant"`
}

type settlementSample struct {
	Type        model.SettlementType `yaml:"type"`
	Value       decimal.Decimal      `yaml:"value"`
	Date        model.Date           `yaml:"date"`
	Description string               `yaml:"description"`
	Agreement   string               `yaml:"agreement"`
}

type authorSample struct {
	FirstName string     `yaml:"first_name"`
	LastName  string     `yaml:"last_name"`
	BirthDate model.Date `yaml:"birth_date"`
	Books     []struct {
		Title         string `yaml:"title"`
		ISBN          int64  `yaml:"isbn"`
		NumberOfPages int    `yaml:"number_of_pages"`
		Description   string `yaml:"description"`
	} `yaml:"books"`
}

type movieSample struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type customerSample struct {
	CustomerID uint   `yaml:"customer_id"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Address    *struct {
		City        string `yaml:"city"`
		Street      string `yaml:"street"`
		HouseNumber string `yaml:"house_number"`
	} `yaml:"address"`
}

func readSample(name string, out any) error {
	data, err := samples.ReadFile("samples/" + name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// AddSampleData loads the embedded sample files in one transaction.
func AddSampleData(db *gorm.DB) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := seedRental(tx); err != nil {
			return err
		}
		if err := seedLibrary(tx); err != nil {
			return err
		}
		if err := seedMovies(tx); err != nil {
			return err
		}
		return seedCustomers(tx)
	})
	if err != nil {
		return fmt.Errorf("add sample data: %w", err)
	}
	logutils.Log.Info("Data has been successfully added to database")
	return nil
}

func seedRental(tx *gorm.DB) error {
	var landlordSamples []personSample
	if err := readSample("landlords.yaml", &landlordSamples); err != nil {
		return err
	}
	landlords := map[string]uint{}
	for _, s := range landlordSamples {
		person, err := s.person()
		if err != nil {
			return err
		}
		l := model.Landlord{Person: person}
		if err := tx.Create(&l).Error; err != nil {
			return err
		}
		landlords[l.Identifier] = l.ID
	}

	var tenantSamples []tenantSample
	if err := readSample("tenants.yaml", &tenantSamples); err != nil {
		return err
	}
	tenants := map[string]uint{}
	for _, s := range tenantSamples {
		person, err := s.person()
		if err != nil {
			return err
		}
		t := model.Tenant{Person: person, LandlordID: landlords[s.Landlord]}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		tenants[t.Identifier] = t.ID
	}

	var flatSamples []flatSample
	if err := readSample("flats.yaml", &flatSamples); err != nil {
		return err
	}
	flats := map[string]uint{}
	for _, s := range flatSamples {
		f := model.Flat{
			Identifier:  s.Identifier,
			Address:     s.Address,
			Description: s.Description,
			LandlordID:  landlords[s.Landlord],
		}
		if err := tx.Create(&f).Error; err != nil {
			return err
		}
		flats[f.Identifier] = f.ID
	}

	var agreementSamples []agreementSample
	if err := readSample("agreements.yaml", &agreementSamples); err != nil {
		return err
	}
	agreements := map[string]uint{}
	for _, s := range agreementSamples {
		a := model.Agreement{
			Identifier:      s.Identifier,
			SignDate:        s.SignDate,
			DateFrom:        s.DateFrom,
			DateTo:          s.DateTo,
			PriceValue:      s.PriceValue,
			PricePeriod:     s.PricePeriod,
			PaymentDeadline: s.PaymentDeadline,
			DepositValue:    s.DepositValue,
			Description:     s.Description,
			FlatID:          flats[s.Flat],
			TenantID:        tenants[s.Tenant],
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		agreements[a.Identifier] = a.ID
	}

	var settlementSamples []settlementSample
	if err := readSample("settlements.yaml", &settlementSamples); err != nil {
		return err
	}
	for _, s := range settlementSamples {
		st := model.Settlement{
			Type:        s.Type,
			Value:       s.Value,
			Date:        s.Date,
			Description: s.Description,
			AgreementID: agreements[s.Agreement],
		}
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedLibrary(tx *gorm.DB) error {
	var authorSamples []authorSample
	if err := readSample("authors.yaml", &authorSamples); err != nil {
		return err
	}
	for _, s := range authorSamples {
		a := model.Author{FirstName: s.FirstName, LastName: s.LastName, BirthDate: s.BirthDate}
		for _, b := range s.Books {
			a.Books = append(a.Books, model.Book{
				Title:         b.Title,
				ISBN:          b.ISBN,
				NumberOfPages: b.NumberOfPages,
				Description:   b.Description,
			})
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedMovies(tx *gorm.DB) error {
	var movieSamples []movieSample
	if err := readSample("movies.yaml", &movieSamples); err != nil {
		return err
	}
	for _, s := range movieSamples {
		if err := tx.Create(&model.Movie{Title: s.Title, Description: s.Description}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedCustomers(tx *gorm.DB) error {
	var customerSamples []customerSample
	if err := readSample("customers.yaml", &customerSamples); err != nil {
		return err
	}
	for _, s := range customerSamples {
		c := model.Customer{CustomerID: s.CustomerID, FirstName: s.FirstName, LastName: s.LastName}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		if s.Address == nil {
			continue
		}
		a := model.Address{
			CustomerID:  c.CustomerID,
			City:        s.Address.City,
			Street:      s.Address.Street,
			HouseNumber: s.Address.HouseNumber,
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}

// RemoveData deletes every row, children first.
func RemoveData(db *gorm.DB) error {
	tables := Models()
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove data: %w", err)
	}
	logutils.Log.Info("Data has been successfully removed from database")
	return nil
}
