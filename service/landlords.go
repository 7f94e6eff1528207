package service

import (
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"
	"restlab/util"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterLandlords(r *gin.RouterGroup) {
	auth := h.Authenticate(landlordOnly)

	g := r.Group("/landlords")
	g.GET("", h.listLandlords)
	g.POST("/register", RequireJSON(), h.registerLandlord)
	g.POST("/login", h.LoginLimit(), RequireJSON(), h.loginLandlord)
	g.GET("/me", auth, h.currentLandlord)
	g.PUT("/update/password", RequireJSON(), auth, h.updateLandlordPassword)
	g.PUT("/update/data", RequireJSON(), auth, h.updateLandlordData)
	g.POST("/logout", auth, h.logout)
	g.GET("/:identifier", h.getLandlord)
	g.GET("/:identifier/flats", h.listLandlordFlats)
}

func (h *Handler) listLandlords(c *gin.Context) {
	q := h.listQuery(c)
	landlords, err := orm.Find[model.Landlord](h.conn(c), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Landlord{}, q, landlords, nil)
}

func (h *Handler) findLandlord(c *gin.Context, identifier string) (*model.Landlord, error) {
	var landlord model.Landlord
	err := h.conn(c).Where("identifier = ?", identifier).First(&landlord).Error
	if isNotFound(err) {
		return nil, response.NotFound("Landlord with identifier %s not found", identifier)
	}
	return &landlord, err
}

func (h *Handler) getLandlord(c *gin.Context) {
	landlord, err := h.findLandlord(c, c.Param("identifier"))
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, landlord)
}

// checkPersonUnique reports which of identifier and email is taken in the
// table of dest, skipping the row with id except.
func (h *Handler) checkPersonUnique(c *gin.Context, dest any, label string, p personRequest, except uint) error {
	var n int64
	tx := h.conn(c).Model(dest).Where("identifier = ?", p.Identifier)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("%s with identifier %s already exists", label, p.Identifier)
	}

	tx = h.conn(c).Model(dest).Where("email = ?", p.Email)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("%s with email %s already exists", label, p.Email)
	}
	return nil
}

func (p personRequest) apply(dst *model.Person) {
	dst.Identifier = p.Identifier
	dst.Email = p.Email
	dst.FirstName = p.FirstName
	dst.LastName = p.LastName
	dst.Phone = p.Phone
	dst.Address = p.Address
	dst.Description = p.Description
}

func (h *Handler) registerLandlord(c *gin.Context) {
	var req registerPersonRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.checkPersonUnique(c, &model.Landlord{}, "Landlord", req.personRequest, 0); err != nil {
		response.Abort(c, err)
		return
	}

	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, err)
		return
	}
	landlord := model.Landlord{}
	req.apply(&landlord.Person)
	landlord.Password = hashed
	if err := h.conn(c).Create(&landlord).Error; err != nil {
		response.Abort(c, err)
		return
	}
	h.issueToken(c, http.StatusCreated, util.Principal{
		Kind:       model.KindLandlord,
		ID:         landlord.ID,
		Identifier: landlord.Identifier,
	})
}

func (h *Handler) loginLandlord(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	var landlord model.Landlord
	err := h.conn(c).Where("identifier = ?", req.Identifier).First(&landlord).Error
	if err != nil && !isNotFound(err) {
		response.Internal(c, err)
		return
	}
	if err != nil || !util.CheckPassword(landlord.Password, req.Password) {
		response.UnauthorizedError(c, "Invalid credentials")
		return
	}
	h.issueToken(c, http.StatusOK, util.Principal{
		Kind:       model.KindLandlord,
		ID:         landlord.ID,
		Identifier: landlord.Identifier,
	})
}

// currentLandlordRecord loads the landlord behind the token. A deleted
// account makes the token useless.
func (h *Handler) currentLandlordRecord(c *gin.Context) (*model.Landlord, bool) {
	var landlord model.Landlord
	err := h.conn(c).First(&landlord, principal(c).ID).Error
	if isNotFound(err) {
		response.UnauthorizedError(c, msgMissingLandlordToken)
		return nil, false
	}
	if err != nil {
		response.Internal(c, err)
		return nil, false
	}
	return &landlord, true
}

func (h *Handler) currentLandlord(c *gin.Context) {
	landlord, ok := h.currentLandlordRecord(c)
	if !ok {
		return
	}
	response.Success(c, landlord)
}

func (h *Handler) updateLandlordPassword(c *gin.Context) {
	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}
	landlord, ok := h.currentLandlordRecord(c)
	if !ok {
		return
	}
	if !util.CheckPassword(landlord.Password, req.CurrentPassword) {
		response.UnauthorizedError(c, "Invalid password")
		return
	}
	hashed, err := util.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if err := h.conn(c).Model(landlord).Update("password", hashed).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, landlord)
}

func (h *Handler) updateLandlordData(c *gin.Context) {
	var req personRequest
	if !bindJSON(c, &req) {
		return
	}
	landlord, ok := h.currentLandlordRecord(c)
	if !ok {
		return
	}
	if err := h.checkPersonUnique(c, &model.Landlord{}, "Landlord", req, landlord.ID); err != nil {
		response.Abort(c, err)
		return
	}
	req.apply(&landlord.Person)
	if err := h.conn(c).Save(landlord).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, landlord)
}

func (h *Handler) listLandlordFlats(c *gin.Context) {
	landlord, err := h.findLandlord(c, c.Param("identifier"))
	if err != nil {
		response.Abort(c, err)
		return
	}
	q := h.listQuery(c)
	flats, err := orm.Find[model.Flat](h.conn(c).Where("landlord_id = ?", landlord.ID), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Flat{}, q, flats, nil)
}
