package model

// Viewer is an account of the movie rating API.
type Viewer struct {
	Base
	Username string `gorm:"uniqueIndex;type:varchar(150);not null" json:"username"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`

	Ratings []Rating `json:"-"`
}

type Movie struct {
	Base
	Title       string `gorm:"type:varchar(32);not null" json:"title"`
	Description string `gorm:"type:varchar(360);not null" json:"description"`

	Ratings []Rating `json:"-"`
}

// Rating is unique per (viewer, movie).
type Rating struct {
	Base
	Stars int `gorm:"not null" json:"stars"`

	MovieID  uint   `gorm:"uniqueIndex:idx_rating_viewer_movie;not null" json:"movie_id"`
	Movie    Movie  `json:"-"`
	ViewerID uint   `gorm:"uniqueIndex:idx_rating_viewer_movie;not null" json:"viewer_id"`
	Viewer   Viewer `json:"-"`
}
