package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (h *Handler) RegisterAgreements(r *gin.RouterGroup) {
	landlord := h.Authenticate(landlordOnly)
	either := h.Authenticate(landlordOrTenant)

	g := r.Group("/agreements")
	g.GET("", either, h.listAgreements)
	g.GET("/:id", either, h.getAgreement)
	// :id is the flat here; gin needs one wildcard name per segment.
	g.POST("/:id/:tenant_id", RequireJSON(), landlord, h.createAgreement)
	g.PUT("/:id", RequireJSON(), landlord, h.updateAgreement)
	g.DELETE("/:id", landlord, h.deleteAgreement)
}

type agreementRequest struct {
	Identifier      string           `json:"identifier" binding:"required,max=50"`
	SignDate        *model.Date      `json:"sign_date" binding:"required"`
	DateFrom        *model.Date      `json:"date_from" binding:"required"`
	DateTo          *model.Date      `json:"date_to" binding:"required"`
	PriceValue      *decimal.Decimal `json:"price_value" binding:"required"`
	PricePeriod     string           `json:"price_period" binding:"required,oneof=day week month year"`
	PaymentDeadline int              `json:"payment_deadline" binding:"required,min=1,max=31"`
	DepositValue    *decimal.Decimal `json:"deposit_value" binding:"required"`
	Description     string           `json:"description"`
}

// check covers what struct tags cannot express.
func (r agreementRequest) check() response.FieldErrors {
	errs := response.FieldErrors{}
	if r.DateTo.Before(*r.DateFrom) {
		errs["date_to"] = []string{"Must not be before date_from."}
	}
	if r.PriceValue.IsNegative() {
		errs["price_value"] = []string{"Must be greater than or equal to 0."}
	}
	if r.DepositValue.IsNegative() {
		errs["deposit_value"] = []string{"Must be greater than or equal to 0."}
	}
	return errs
}

func (r agreementRequest) apply(a *model.Agreement) {
	a.Identifier = r.Identifier
	a.SignDate = *r.SignDate
	a.DateFrom = *r.DateFrom
	a.DateTo = *r.DateTo
	a.PriceValue = *r.PriceValue
	a.PricePeriod = model.PricePeriod(r.PricePeriod)
	a.PaymentDeadline = r.PaymentDeadline
	a.DepositValue = *r.DepositValue
	a.Description = r.Description
}

// landlordFlatIDs selects the ids of the flats a landlord owns.
func (h *Handler) landlordFlatIDs(c *gin.Context, landlordID uint) *gorm.DB {
	return h.conn(c).Model(&model.Flat{}).Select("id").Where("landlord_id = ?", landlordID)
}

// visibleAgreements scopes agreements to the caller: a landlord sees those on
// own flats, a tenant its own.
func (h *Handler) visibleAgreements(c *gin.Context) *gorm.DB {
	p := principal(c)
	if p.Kind == model.KindTenant {
		return h.conn(c).Where("tenant_id = ?", p.ID)
	}
	return h.conn(c).Where("flat_id IN (?)", h.landlordFlatIDs(c, p.ID))
}

func (h *Handler) findAgreement(c *gin.Context, id uint) (*model.Agreement, error) {
	var agreement model.Agreement
	err := h.visibleAgreements(c).Preload("Flat").Preload("Tenant").First(&agreement, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Agreement with id %d not found", id)
	}
	return &agreement, err
}

func (h *Handler) listAgreements(c *gin.Context) {
	q := h.listQuery(c)
	agreements, err := orm.Find[model.Agreement](h.visibleAgreements(c), q, "Flat", "Tenant")
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Agreement{}, q, lo.Map(agreements, func(a model.Agreement, _ int) agreementView {
		return viewAgreement(a)
	}), nil)
}

func (h *Handler) getAgreement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	agreement, err := h.findAgreement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewAgreement(*agreement))
}

func (h *Handler) checkAgreementUnique(c *gin.Context, identifier string, except uint) error {
	var n int64
	tx := h.conn(c).Model(&model.Agreement{}).Where("identifier = ?", identifier)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("Agreement with identifier %s already exists", identifier)
	}
	return nil
}

func (h *Handler) createAgreement(c *gin.Context) {
	flatID, ok := idParam(c, "id")
	if !ok {
		return
	}
	tenantID, ok := idParam(c, "tenant_id")
	if !ok {
		return
	}
	var req agreementRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.check(); len(errs) > 0 {
		response.Error(c, http.StatusBadRequest, errs)
		return
	}

	flat, err := h.ownFlat(c, flatID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	tenant, err := h.landlordTenant(c, tenantID, principal(c).ID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkAgreementUnique(c, req.Identifier, 0); err != nil {
		response.Abort(c, err)
		return
	}

	agreement := model.Agreement{FlatID: flat.ID, TenantID: tenant.ID}
	req.apply(&agreement)
	if err := h.conn(c).Create(&agreement).Error; err != nil {
		response.Abort(c, err)
		return
	}
	agreement.Flat = *flat
	agreement.Tenant = *tenant
	response.Created(c, viewAgreement(agreement))
}

// ownAgreement loads agreement id for the landlord owning its flat.
func (h *Handler) ownAgreement(c *gin.Context, id uint) (*model.Agreement, error) {
	if principal(c).Kind != model.KindLandlord {
		return nil, response.NotFound("Agreement with id %d not found", id)
	}
	return h.findAgreement(c, id)
}

func (h *Handler) updateAgreement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req agreementRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.check(); len(errs) > 0 {
		response.Error(c, http.StatusBadRequest, errs)
		return
	}
	agreement, err := h.ownAgreement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkAgreementUnique(c, req.Identifier, agreement.ID); err != nil {
		response.Abort(c, err)
		return
	}
	req.apply(agreement)
	if err := h.conn(c).Omit("Flat", "Tenant").Save(agreement).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewAgreement(*agreement))
}

func (h *Handler) deleteAgreement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	agreement, err := h.ownAgreement(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	err = h.conn(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("agreement_id = ?", agreement.ID).Delete(&model.Settlement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Agreement{}, agreement.ID).Error
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Agreement with id %d has been deleted", id))
}
