package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
)

// RegisterRatings exposes ratings read-only; they are written through
// /movies/:id/rate_movie.
func (h *Handler) RegisterRatings(r *gin.RouterGroup) {
	viewer := h.Authenticate(viewerOnly)

	g := r.Group("/ratings", viewer)
	g.GET("", h.listRatings)
	g.GET("/:id", h.getRating)
	g.POST("", h.refuseRatingCreate)
	g.PUT("/:id", h.refuseRatingUpdate)
	g.DELETE("/:id", h.deleteRating)
}

func (h *Handler) listRatings(c *gin.Context) {
	q := h.listQuery(c)
	ratings, err := orm.Find[model.Rating](h.conn(c), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Rating{}, q, ratings, nil)
}

func (h *Handler) findRating(c *gin.Context, id uint) (*model.Rating, error) {
	var rating model.Rating
	err := h.conn(c).First(&rating, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Rating with id %d not found", id)
	}
	return &rating, err
}

func (h *Handler) getRating(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rating, err := h.findRating(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, rating)
}

func (h *Handler) refuseRatingCreate(c *gin.Context) {
	response.BadRequestError(c, "You can not create rating like that")
}

func (h *Handler) refuseRatingUpdate(c *gin.Context) {
	response.BadRequestError(c, "You can not update rating like that")
}

func (h *Handler) deleteRating(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rating, err := h.findRating(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if rating.ViewerID != principal(c).ID {
		response.Error(c, http.StatusForbidden, "You can only delete your own ratings")
		return
	}
	if err := h.conn(c).Delete(rating).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Rating with id %d has been deleted", id))
}
