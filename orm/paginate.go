package orm

import (
	"strconv"

	"gorm.io/gorm"
)

type Pagination struct {
	TotalPages   int    `json:"total_pages"`
	TotalRecords int64  `json:"total_records"`
	CurrentPage  string `json:"current_page"`
	NextPage     string `json:"next_page,omitempty"`
	PreviousPage string `json:"previous_page,omitempty"`
}

// PageLink rebuilds the request URL for another page: page comes first, the
// other parameters follow in their original order.
func PageLink(path string, params Params, page int) string {
	link := path + "?page=" + strconv.Itoa(page)
	if rest := params.Without(ParamPage); len(rest) > 0 {
		link += "&" + rest.Encode()
	}
	return link
}

// NewPagination describes page q.Page of total records.
func NewPagination(path string, q Query, total int64) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	p := Pagination{
		TotalPages:   pages,
		TotalRecords: total,
		CurrentPage:  PageLink(path, q.Params, q.Page),
	}
	if q.Page < pages {
		p.NextPage = PageLink(path, q.Params, q.Page+1)
	}
	if q.Page > 1 {
		p.PreviousPage = PageLink(path, q.Params, q.Page-1)
	}
	return p
}

func preload(db *gorm.DB, relations []string) *gorm.DB {
	for _, rel := range relations {
		db = db.Preload(rel)
	}
	return db
}

// Find filters and sorts db by q without paging, then loads relations.
func Find[T any](db *gorm.DB, q Query, relations ...string) ([]T, error) {
	cols, err := ColumnsOf(db, new(T))
	if err != nil {
		return nil, err
	}
	items := []T{}
	tx := ApplyOrder(ApplyFilter(db.Model(new(T)), cols, q.Params), cols, q.Sort)
	err = preload(tx, relations).Find(&items).Error
	return items, err
}

// FindPage filters, sorts and pages db by q. Pages past the end are empty.
// Relations are preloaded for the returned page only.
func FindPage[T any](db *gorm.DB, q Query, path string, relations ...string) ([]T, Pagination, error) {
	cols, err := ColumnsOf(db, new(T))
	if err != nil {
		return nil, Pagination{}, err
	}
	filtered := ApplyFilter(db.Model(new(T)), cols, q.Params).Session(&gorm.Session{})

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	items := []T{}
	offset, ok := q.Offset()
	if !ok {
		return items, NewPagination(path, q, total), nil
	}
	err = preload(ApplyOrder(filtered, cols, q.Sort), relations).
		Offset(offset).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, NewPagination(path, q, total), nil
}
