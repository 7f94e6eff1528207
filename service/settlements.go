package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (h *Handler) RegisterSettlements(r *gin.RouterGroup) {
	landlord := h.Authenticate(landlordOnly)
	either := h.Authenticate(landlordOrTenant)

	r.GET("/settlements", either, h.listSettlements)
	r.GET("/settlements/:id", either, h.getSettlement)
	r.PUT("/settlements/:id", RequireJSON(), landlord, h.updateSettlement)
	r.DELETE("/settlements/:id", landlord, h.deleteSettlement)

	r.GET("/agreements/:id/settlements", either, h.listAgreementSettlements)
	r.POST("/agreements/:id/settlements", RequireJSON(), landlord, h.createSettlement)
	r.DELETE("/agreements/:id/settlements", landlord, h.deleteAgreementSettlements)
}

type settlementRequest struct {
	Type        string           `json:"type" binding:"required,oneof=charge payment"`
	Value       *decimal.Decimal `json:"value" binding:"required"`
	Date        *model.Date      `json:"date" binding:"required"`
	Description string           `json:"description"`
}

func (r settlementRequest) apply(s *model.Settlement) {
	s.Type = model.SettlementType(r.Type)
	s.Value = *r.Value
	s.Date = *r.Date
	s.Description = r.Description
}

// visibleSettlements narrows settlements to agreements the caller may see.
func (h *Handler) visibleSettlements(c *gin.Context) *gorm.DB {
	agreements := h.visibleAgreements(c).Model(&model.Agreement{}).Select("id")
	return h.conn(c).Where("agreement_id IN (?)", agreements)
}

func (h *Handler) findSettlement(c *gin.Context, id uint) (*model.Settlement, error) {
	var settlement model.Settlement
	err := h.visibleSettlements(c).First(&settlement, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Settlement with id %d not found", id)
	}
	return &settlement, err
}

func (h *Handler) listSettlements(c *gin.Context) {
	q := h.listQuery(c)
	settlements, err := orm.Find[model.Settlement](h.visibleSettlements(c), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Settlement{}, q, settlements, nil)
}

func (h *Handler) listAgreementSettlements(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	agreement, err := h.findAgreement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	q := h.listQuery(c)
	settlements, err := orm.Find[model.Settlement](h.conn(c).Where("agreement_id = ?", agreement.ID), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Settlement{}, q, settlements, nil)
}

func (h *Handler) getSettlement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	settlement, err := h.findSettlement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, settlement)
}

func (h *Handler) createSettlement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req settlementRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Value.IsNegative() {
		response.Error(c, http.StatusBadRequest, response.FieldErrors{"value": {"Must be greater than or equal to 0."}})
		return
	}
	agreement, err := h.ownAgreement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	settlement := model.Settlement{AgreementID: agreement.ID}
	req.apply(&settlement)
	if err := h.conn(c).Create(&settlement).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, settlement)
}

func (h *Handler) updateSettlement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req settlementRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Value.IsNegative() {
		response.Error(c, http.StatusBadRequest, response.FieldErrors{"value": {"Must be greater than or equal to 0."}})
		return
	}
	settlement, err := h.findSettlement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	req.apply(settlement)
	if err := h.conn(c).Save(settlement).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, settlement)
}

func (h *Handler) deleteSettlement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	settlement, err := h.findSettlement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.conn(c).Delete(settlement).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Settlement with id %d has been deleted", id))
}

func (h *Handler) deleteAgreementSettlements(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	agreement, err := h.ownAgreement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	res := h.conn(c).Where("agreement_id = ?", agreement.ID).Delete(&model.Settlement{})
	if res.Error != nil {
		response.Abort(c, res.Error)
		return
	}
	response.Done(c, fmt.Sprintf("Settlements for agreement with id %d has been deleted", id))
}
