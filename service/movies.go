package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func (h *Handler) RegisterMovies(r *gin.RouterGroup) {
	viewer := h.Authenticate(viewerOnly)

	g := r.Group("/movies", viewer)
	g.GET("", h.listMovies)
	g.GET("/:id", h.getMovie)
	g.POST("", RequireJSON(), h.createMovie)
	g.PUT("/:id", RequireJSON(), h.updateMovie)
	g.DELETE("/:id", h.deleteMovie)
	g.POST("/:id/rate_movie", RequireJSON(), h.rateMovie)
}

type movieRequest struct {
	Title       string `json:"title" binding:"required,max=32"`
	Description string `json:"description" binding:"required,max=360"`
}

type rateRequest struct {
	Stars *int `json:"stars"`
}

func (h *Handler) listMovies(c *gin.Context) {
	q := h.listQuery(c)
	movies, page, err := orm.FindPage[model.Movie](h.conn(c), q, c.Request.URL.Path, "Ratings")
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Movie{}, q, lo.Map(movies, func(m model.Movie, _ int) movieView {
		return viewMovie(m)
	}), &page)
}

func (h *Handler) findMovie(c *gin.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	err := h.conn(c).Preload("Ratings").First(&movie, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Movie with id %d not found", id)
	}
	return &movie, err
}

func (h *Handler) getMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	movie, err := h.findMovie(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewMovie(*movie))
}

func (h *Handler) createMovie(c *gin.Context) {
	var req movieRequest
	if !bindJSON(c, &req) {
		return
	}
	movie := model.Movie{Title: req.Title, Description: req.Description}
	if err := h.conn(c).Create(&movie).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, viewMovie(movie))
}

func (h *Handler) updateMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req movieRequest
	if !bindJSON(c, &req) {
		return
	}
	movie, err := h.findMovie(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	movie.Title = req.Title
	movie.Description = req.Description
	if err := h.conn(c).Omit("Ratings").Save(movie).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewMovie(*movie))
}

func (h *Handler) deleteMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	movie, err := h.findMovie(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	err = h.conn(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", movie.ID).Delete(&model.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Movie{}, movie.ID).Error
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Movie with id %d has been deleted", id))
}

// rateMovie creates the caller's rating of a movie or changes its stars.
func (h *Handler) rateMovie(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Stars == nil {
		response.BadRequestError(c, "Provide stars for this movie")
		return
	}
	if *req.Stars < model.MinStars || *req.Stars > model.MaxStars {
		response.Error(c, http.StatusBadRequest, response.FieldErrors{
			"stars": {fmt.Sprintf("Must be between %d and %d.", model.MinStars, model.MaxStars)},
		})
		return
	}
	movie, err := h.findMovie(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}

	viewerID := principal(c).ID
	var rating model.Rating
	err = h.conn(c).Where("movie_id = ? AND viewer_id = ?", movie.ID, viewerID).First(&rating).Error
	switch {
	case err == nil:
		rating.Stars = *req.Stars
		if err := h.conn(c).Save(&rating).Error; err != nil {
			response.Abort(c, err)
			return
		}
		response.Result(c, http.StatusOK, "Rating updated", rating)
	case isNotFound(err):
		rating = model.Rating{MovieID: movie.ID, ViewerID: viewerID, Stars: *req.Stars}
		if err := h.conn(c).Create(&rating).Error; err != nil {
			response.Abort(c, err)
			return
		}
		response.Result(c, http.StatusOK, "Rating created", rating)
	default:
		response.Internal(c, err)
	}
}
