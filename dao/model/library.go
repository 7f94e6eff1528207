package model

type Author struct {
	Base
	FirstName string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(50);not null" json:"last_name"`
	BirthDate Date   `gorm:"not null" json:"birth_date"`

	Books []Book `json:"-"`
}

type Book struct {
	Base
	Title         string `gorm:"type:varchar(50);not null" json:"title"`
	ISBN          int64  `gorm:"column:isbn;uniqueIndex;not null" json:"isbn"`
	NumberOfPages int    `gorm:"not null" json:"number_of_pages"`
	Description   string `gorm:"type:text" json:"description"`

	AuthorID uint   `gorm:"index;not null" json:"author_id"`
	Author   Author `json:"-"`
}

// User is an account of the library API.
type User struct {
	Base
	Username string `gorm:"uniqueIndex;type:varchar(255);not null" json:"username"`
	Email    string `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
}
