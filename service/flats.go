package service

import (
	"fmt"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func (h *Handler) RegisterFlats(r *gin.RouterGroup) {
	landlord := h.Authenticate(landlordOnly)

	g := r.Group("/flats")
	g.GET("", h.listFlats)
	g.POST("", RequireJSON(), landlord, h.createFlat)
	g.GET("/:id", h.getFlat)
	g.PUT("/:id", RequireJSON(), landlord, h.updateFlat)
	g.DELETE("/:id", landlord, h.deleteFlat)
}

type flatRequest struct {
	Identifier  string `json:"identifier" binding:"required,max=50"`
	Address     string `json:"address" binding:"required,max=255"`
	Description string `json:"description"`
}

func (h *Handler) listFlats(c *gin.Context) {
	q := h.listQuery(c)
	flats, page, err := orm.FindPage[model.Flat](h.conn(c), q, c.Request.URL.Path, "Landlord")
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Flat{}, q, lo.Map(flats, func(f model.Flat, _ int) flatView {
		return viewFlat(f)
	}), &page)
}

func (h *Handler) findFlat(c *gin.Context, id uint) (*model.Flat, error) {
	var flat model.Flat
	err := h.conn(c).Preload("Landlord").First(&flat, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Flat with id %d not found", id)
	}
	return &flat, err
}

// ownFlat loads flat id when it belongs to the authenticated landlord.
func (h *Handler) ownFlat(c *gin.Context, id uint) (*model.Flat, error) {
	flat, err := h.findFlat(c, id)
	if err != nil {
		return nil, err
	}
	if flat.LandlordID != principal(c).ID {
		return nil, response.NotFound("Flat with id %d not found", id)
	}
	return flat, nil
}

func (h *Handler) getFlat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	flat, err := h.findFlat(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewFlat(*flat))
}

func (h *Handler) checkFlatUnique(c *gin.Context, identifier string, except uint) error {
	var n int64
	tx := h.conn(c).Model(&model.Flat{}).Where("identifier = ?", identifier)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("Flat with identifier %s already exists", identifier)
	}
	return nil
}

func (h *Handler) createFlat(c *gin.Context) {
	var req flatRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.checkFlatUnique(c, req.Identifier, 0); err != nil {
		response.Abort(c, err)
		return
	}
	flat := model.Flat{
		Identifier:  req.Identifier,
		Address:     req.Address,
		Description: req.Description,
		LandlordID:  principal(c).ID,
	}
	if err := h.conn(c).Create(&flat).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, flat)
}

func (h *Handler) updateFlat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req flatRequest
	if !bindJSON(c, &req) {
		return
	}
	flat, err := h.ownFlat(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkFlatUnique(c, req.Identifier, flat.ID); err != nil {
		response.Abort(c, err)
		return
	}
	flat.Identifier = req.Identifier
	flat.Address = req.Address
	flat.Description = req.Description
	if err := h.conn(c).Omit("Landlord").Save(flat).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewFlat(*flat))
}

// deleteFlat refuses flats under agreement. Pictures go with the flat, their
// files once the rows are gone.
func (h *Handler) deleteFlat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	flat, err := h.ownFlat(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}

	var pictures []model.Picture
	err = h.conn(c).Transaction(func(tx *gorm.DB) error {
		var agreements int64
		if err := tx.Model(&model.Agreement{}).Where("flat_id = ?", flat.ID).Count(&agreements).Error; err != nil {
			return err
		}
		if agreements > 0 {
			return response.Conflict("Flat with id %d has agreements and cannot be deleted", id)
		}
		if err := tx.Where("flat_id = ?", flat.ID).Find(&pictures).Error; err != nil {
			return err
		}
		if err := tx.Where("flat_id = ?", flat.ID).Delete(&model.Picture{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Flat{}, flat.ID).Error
	})
	if err != nil {
		response.Abort(c, err)
		return
	}

	for _, p := range pictures {
		h.removeStored(c, p.Path)
	}
	response.Done(c, fmt.Sprintf("Flat with id %d has been deleted", id))
}
