package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"
	"restlab/util"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterTenants(r *gin.RouterGroup) {
	landlord := h.Authenticate(landlordOnly)
	tenant := h.Authenticate(tenantOnly)
	either := h.Authenticate(landlordOrTenant)

	g := r.Group("/tenants")
	g.GET("", landlord, h.listTenants)
	g.POST("", RequireJSON(), landlord, h.createTenant)
	g.POST("/login", h.LoginLimit(), RequireJSON(), h.loginTenant)
	g.GET("/me", tenant, h.currentTenant)
	g.POST("/logout", tenant, h.logout)
	g.GET("/:id", landlord, h.getTenant)
	g.PUT("/:id/password", RequireJSON(), either, h.updateTenantPassword)
	g.PUT("/:id/data", RequireJSON(), either, h.updateTenantData)
	g.DELETE("/:id", landlord, h.deleteTenant)
}

// tenantPasswordRequest lets the owning landlord reset a password without
// knowing the current one. Tenants must send it.
type tenantPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=255"`
}

func (h *Handler) listTenants(c *gin.Context) {
	q := h.listQuery(c)
	tenants, err := orm.Find[model.Tenant](h.conn(c).Where("landlord_id = ?", principal(c).ID), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Tenant{}, q, tenants, nil)
}

// landlordTenant loads tenant id when it belongs to the landlord.
func (h *Handler) landlordTenant(c *gin.Context, id, landlordID uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := h.conn(c).Preload("Landlord").
		Where("landlord_id = ?", landlordID).
		First(&tenant, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Tenant with id %d not found", id)
	}
	return &tenant, err
}

// accessibleTenant resolves tenant id for the owning landlord or the tenant
// itself.
func (h *Handler) accessibleTenant(c *gin.Context, id uint) (*model.Tenant, error) {
	p := principal(c)
	if p.Kind == model.KindTenant {
		if p.ID != id {
			return nil, response.NotFound("Incorrect tenant id")
		}
		var tenant model.Tenant
		err := h.conn(c).Preload("Landlord").First(&tenant, id).Error
		if isNotFound(err) {
			return nil, response.NotFound("Incorrect tenant id")
		}
		return &tenant, err
	}
	return h.landlordTenant(c, id, p.ID)
}

func (h *Handler) getTenant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tenant, err := h.landlordTenant(c, id, principal(c).ID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewTenant(*tenant))
}

func (h *Handler) createTenant(c *gin.Context) {
	var req registerPersonRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.checkPersonUnique(c, &model.Tenant{}, "Tenant", req.personRequest, 0); err != nil {
		response.Abort(c, err)
		return
	}
	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, err)
		return
	}
	tenant := model.Tenant{LandlordID: principal(c).ID}
	req.apply(&tenant.Person)
	tenant.Password = hashed
	if err := h.conn(c).Create(&tenant).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, tenant)
}

func (h *Handler) loginTenant(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	var tenant model.Tenant
	err := h.conn(c).Where("identifier = ?", req.Identifier).First(&tenant).Error
	if err != nil && !isNotFound(err) {
		response.Internal(c, err)
		return
	}
	if err != nil || !util.CheckPassword(tenant.Password, req.Password) {
		response.UnauthorizedError(c, "Invalid credentials")
		return
	}
	h.issueToken(c, http.StatusOK, util.Principal{
		Kind:       model.KindTenant,
		ID:         tenant.ID,
		Identifier: tenant.Identifier,
	})
}

func (h *Handler) currentTenant(c *gin.Context) {
	var tenant model.Tenant
	err := h.conn(c).Preload("Landlord").First(&tenant, principal(c).ID).Error
	if isNotFound(err) {
		response.UnauthorizedError(c, msgMissingToken)
		return
	}
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, viewTenant(tenant))
}

func (h *Handler) updateTenantPassword(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req tenantPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.accessibleTenant(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if principal(c).Kind == model.KindTenant {
		if req.CurrentPassword == "" {
			response.Error(c, http.StatusBadRequest, response.FieldErrors{
				"current_password": {response.MissingField},
			})
			return
		}
		if !util.CheckPassword(tenant.Password, req.CurrentPassword) {
			response.UnauthorizedError(c, "Invalid password")
			return
		}
	}
	hashed, err := util.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if err := h.conn(c).Model(tenant).Update("password", hashed).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewTenant(*tenant))
}

func (h *Handler) updateTenantData(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req personRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.accessibleTenant(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkPersonUnique(c, &model.Tenant{}, "Tenant", req, tenant.ID); err != nil {
		response.Abort(c, err)
		return
	}
	req.apply(&tenant.Person)
	if err := h.conn(c).Omit("Landlord").Save(tenant).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewTenant(*tenant))
}

func (h *Handler) deleteTenant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tenant, err := h.landlordTenant(c, id, principal(c).ID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	var agreements int64
	if err := h.conn(c).Model(&model.Agreement{}).Where("tenant_id = ?", tenant.ID).Count(&agreements).Error; err != nil {
		response.Internal(c, err)
		return
	}
	if agreements > 0 {
		response.Abort(c, response.Conflict("Tenant with id %d has agreements and cannot be deleted", id))
		return
	}
	if err := h.conn(c).Delete(tenant).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Tenant with id %d has been deleted", id))
}
