package service

import (
	"fmt"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func (h *Handler) RegisterBooks(r *gin.RouterGroup) {
	user := h.Authenticate(userOnly)

	r.GET("/books", h.listBooks)
	r.GET("/books/:id", h.getBook)
	r.PUT("/books/:id", RequireJSON(), user, h.updateBook)
	r.DELETE("/books/:id", user, h.deleteBook)

	r.GET("/authors/:id/books", h.listAuthorBooks)
	r.POST("/authors/:id/books", RequireJSON(), user, h.createBook)
}

type bookRequest struct {
	Title         string `json:"title" binding:"required,max=50"`
	ISBN          int64  `json:"isbn" binding:"required,min=1000000000000,max=9999999999999"`
	NumberOfPages int    `json:"number_of_pages" binding:"required,min=1"`
	Description   string `json:"description"`
}

func (r bookRequest) apply(b *model.Book) {
	b.Title = r.Title
	b.ISBN = r.ISBN
	b.NumberOfPages = r.NumberOfPages
	b.Description = r.Description
}

func (h *Handler) checkISBNUnique(c *gin.Context, isbn int64, except uint) error {
	var n int64
	tx := h.conn(c).Model(&model.Book{}).Where("isbn = ?", isbn)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("Book with ISBN %d already exists", isbn)
	}
	return nil
}

func (h *Handler) listBooks(c *gin.Context) {
	q := h.listQuery(c)
	books, page, err := orm.FindPage[model.Book](h.conn(c), q, c.Request.URL.Path, "Author")
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Book{}, q, lo.Map(books, func(b model.Book, _ int) bookView {
		return viewBook(b)
	}), &page)
}

func (h *Handler) findBook(c *gin.Context, id uint) (*model.Book, error) {
	var book model.Book
	err := h.conn(c).Preload("Author").First(&book, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Book with id %d not found", id)
	}
	return &book, err
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	book, err := h.findBook(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewBook(*book))
}

func (h *Handler) listAuthorBooks(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	author, err := h.findAuthor(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	q := h.listQuery(c)
	books, err := orm.Find[model.Book](h.conn(c).Where("author_id = ?", author.ID), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Book{}, q, books, nil)
}

func (h *Handler) createBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	author, err := h.findAuthor(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkISBNUnique(c, req.ISBN, 0); err != nil {
		response.Abort(c, err)
		return
	}
	book := model.Book{AuthorID: author.ID}
	req.apply(&book)
	if err := h.conn(c).Create(&book).Error; err != nil {
		response.Abort(c, err)
		return
	}
	book.Author = *author
	response.Created(c, viewBook(book))
}

func (h *Handler) updateBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.findBook(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkISBNUnique(c, req.ISBN, book.ID); err != nil {
		response.Abort(c, err)
		return
	}
	req.apply(book)
	if err := h.conn(c).Omit("Author").Save(book).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewBook(*book))
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	book, err := h.findBook(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.conn(c).Delete(&model.Book{}, book.ID).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Book with id %d has been deleted", id))
}
