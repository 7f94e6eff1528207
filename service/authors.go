package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) RegisterAuthors(r *gin.RouterGroup) {
	user := h.Authenticate(userOnly)

	g := r.Group("/authors")
	g.GET("", h.listAuthors)
	g.GET("/:id", h.getAuthor)
	g.POST("", RequireJSON(), user, h.createAuthor)
	g.PUT("/:id", RequireJSON(), user, h.updateAuthor)
	g.DELETE("/:id", user, h.deleteAuthor)
}

type authorRequest struct {
	FirstName string      `json:"first_name" binding:"required,max=50"`
	LastName  string      `json:"last_name" binding:"required,max=50"`
	BirthDate *model.Date `json:"birth_date" binding:"required"`
}

func (r authorRequest) apply(a *model.Author) {
	a.FirstName = r.FirstName
	a.LastName = r.LastName
	a.BirthDate = *r.BirthDate
}

func checkBirthDate(c *gin.Context, d *model.Date) bool {
	if d.Time().After(timeNow()) {
		response.Error(c, http.StatusBadRequest, response.FieldErrors{
			"birth_date": {fmt.Sprintf("Birth date must be lower than %s", timeNow().Format(model.DateLayout))},
		})
		return false
	}
	return true
}

func (h *Handler) listAuthors(c *gin.Context) {
	q := h.listQuery(c)
	authors, page, err := orm.FindPage[model.Author](h.conn(c), q, c.Request.URL.Path)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Author{}, q, authors, &page)
}

func (h *Handler) findAuthor(c *gin.Context, id uint, relations ...string) (*model.Author, error) {
	var author model.Author
	tx := h.conn(c)
	for _, rel := range relations {
		tx = tx.Preload(rel)
	}
	err := tx.First(&author, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Author with id %d not found", id)
	}
	return &author, err
}

func (h *Handler) getAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	author, err := h.findAuthor(c, id, "Books")
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewAuthor(*author))
}

func (h *Handler) createAuthor(c *gin.Context) {
	var req authorRequest
	if !bindJSON(c, &req) || !checkBirthDate(c, req.BirthDate) {
		return
	}
	var author model.Author
	req.apply(&author)
	if err := h.conn(c).Create(&author).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, author)
}

func (h *Handler) updateAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req authorRequest
	if !bindJSON(c, &req) || !checkBirthDate(c, req.BirthDate) {
		return
	}
	author, err := h.findAuthor(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	req.apply(author)
	if err := h.conn(c).Save(author).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, author)
}

// deleteAuthor removes the author together with the books.
func (h *Handler) deleteAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	author, err := h.findAuthor(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	err = h.conn(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("author_id = ?", author.ID).Delete(&model.Book{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Author{}, author.ID).Error
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Author with id %d has been deleted", id))
}

