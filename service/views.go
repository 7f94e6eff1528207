package service

import (
	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Nested references keep list payloads small; full objects live behind
// their own endpoints.

type personRef struct {
	ID         uint   `json:"id"`
	Identifier string `json:"identifier"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

func refPerson(id uint, p model.Person) *personRef {
	if id == 0 {
		return nil
	}
	return &personRef{ID: id, Identifier: p.Identifier, FirstName: p.FirstName, LastName: p.LastName}
}

type flatRef struct {
	ID         uint   `json:"id"`
	Identifier string `json:"identifier"`
	Address    string `json:"address"`
}

func refFlat(f model.Flat) *flatRef {
	if f.ID == 0 {
		return nil
	}
	return &flatRef{ID: f.ID, Identifier: f.Identifier, Address: f.Address}
}

type tenantView struct {
	model.Tenant
	Landlord *personRef `json:"landlord,omitempty"`
}

func viewTenant(t model.Tenant) tenantView {
	return tenantView{Tenant: t, Landlord: refPerson(t.Landlord.ID, t.Landlord.Person)}
}

type flatView struct {
	model.Flat
	Landlord *personRef `json:"landlord,omitempty"`
}

func viewFlat(f model.Flat) flatView {
	return flatView{Flat: f, Landlord: refPerson(f.Landlord.ID, f.Landlord.Person)}
}

type agreementView struct {
	model.Agreement
	Flat   *flatRef   `json:"flat,omitempty"`
	Tenant *personRef `json:"tenant,omitempty"`
}

func viewAgreement(a model.Agreement) agreementView {
	return agreementView{
		Agreement: a,
		Flat:      refFlat(a.Flat),
		Tenant:    refPerson(a.Tenant.ID, a.Tenant.Person),
	}
}

type pictureView struct {
	model.Picture
	Flat *flatRef `json:"flat,omitempty"`
}

func viewPicture(p model.Picture) pictureView {
	return pictureView{Picture: p, Flat: refFlat(p.Flat)}
}

type authorRef struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// bookView nests the author in place of the author_id column.
type bookView struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	ISBN          int64      `json:"isbn"`
	NumberOfPages int        `json:"number_of_pages"`
	Description   string     `json:"description"`
	Author        *authorRef `json:"author,omitempty"`
}

func viewBook(b model.Book) bookView {
	v := bookView{
		ID:            b.ID,
		Title:         b.Title,
		ISBN:          b.ISBN,
		NumberOfPages: b.NumberOfPages,
		Description:   b.Description,
	}
	if b.Author.ID != 0 {
		v.Author = &authorRef{ID: b.Author.ID, FirstName: b.Author.FirstName, LastName: b.Author.LastName}
	}
	return v
}

type authorView struct {
	model.Author
	Books []model.Book `json:"books,omitempty"`
}

func viewAuthor(a model.Author) authorView {
	return authorView{Author: a, Books: a.Books}
}

type movieView struct {
	model.Movie
	NoOfRatings int     `json:"no_of_ratings"`
	AvgRating   float64 `json:"avg_rating"`
}

func viewMovie(m model.Movie) movieView {
	v := movieView{Movie: m, NoOfRatings: len(m.Ratings)}
	if v.NoOfRatings > 0 {
		v.AvgRating = float64(lo.SumBy(m.Ratings, func(r model.Rating) int { return r.Stars })) / float64(v.NoOfRatings)
	}
	return v
}

// renderList projects views on the columns of dest and writes the list
// envelope, with page metadata when page is set.
func renderList[V any](c *gin.Context, db *gorm.DB, dest any, q orm.Query, views []V, page *orm.Pagination) {
	cols, err := orm.ColumnsOf(db, dest)
	if err != nil {
		response.Internal(c, err)
		return
	}
	data, err := orm.Project(views, cols, q.Fields)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if page != nil {
		response.Paginated(c, data, len(views), *page)
		return
	}
	response.List(c, data, len(views))
}
