package service

import (
	"net/http"

	"restlab/dao/model"
	"restlab/response"
	"restlab/util"

	"github.com/gin-gonic/gin"
)

// RegisterAuth mounts the library API accounts.
func (h *Handler) RegisterAuth(r *gin.RouterGroup) {
	user := h.Authenticate(userOnly)

	g := r.Group("/auth")
	g.POST("/register", RequireJSON(), h.registerUser)
	g.POST("/login", h.LoginLimit(), RequireJSON(), h.loginUser)
	g.GET("/me", user, h.currentUser)
	g.PUT("/update/password", RequireJSON(), user, h.updateUserPassword)
	g.PUT("/update/data", RequireJSON(), user, h.updateUserData)
	g.POST("/logout", user, h.logout)
}

type userDataRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
}

type registerUserRequest struct {
	userDataRequest
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type userLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) checkUserUnique(c *gin.Context, req userDataRequest, except uint) error {
	var n int64
	tx := h.conn(c).Model(&model.User{}).Where("username = ?", req.Username)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("User with username %s already exists", req.Username)
	}

	tx = h.conn(c).Model(&model.User{}).Where("email = ?", req.Email)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("User with email %s already exists", req.Email)
	}
	return nil
}

func userPrincipal(u *model.User) util.Principal {
	return util.Principal{Kind: model.KindUser, ID: u.ID, Identifier: u.Username}
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.checkUserUnique(c, req.userDataRequest, 0); err != nil {
		response.Abort(c, err)
		return
	}
	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, err)
		return
	}
	user := model.User{Username: req.Username, Email: req.Email, Password: hashed}
	if err := h.conn(c).Create(&user).Error; err != nil {
		response.Abort(c, err)
		return
	}
	h.issueToken(c, http.StatusCreated, userPrincipal(&user))
}

func (h *Handler) loginUser(c *gin.Context) {
	var req userLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	var user model.User
	err := h.conn(c).Where("username = ?", req.Username).First(&user).Error
	if err != nil && !isNotFound(err) {
		response.Internal(c, err)
		return
	}
	if err != nil || !util.CheckPassword(user.Password, req.Password) {
		response.UnauthorizedError(c, "Invalid credentials")
		return
	}
	h.issueToken(c, http.StatusOK, userPrincipal(&user))
}

func (h *Handler) currentUserRecord(c *gin.Context) (*model.User, bool) {
	var user model.User
	err := h.conn(c).First(&user, principal(c).ID).Error
	if isNotFound(err) {
		response.UnauthorizedError(c, msgMissingToken)
		return nil, false
	}
	if err != nil {
		response.Internal(c, err)
		return nil, false
	}
	return &user, true
}

func (h *Handler) currentUser(c *gin.Context) {
	if user, ok := h.currentUserRecord(c); ok {
		response.Success(c, user)
	}
}

func (h *Handler) updateUserPassword(c *gin.Context) {
	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}
	user, ok := h.currentUserRecord(c)
	if !ok {
		return
	}
	if !util.CheckPassword(user.Password, req.CurrentPassword) {
		response.UnauthorizedError(c, "Invalid password")
		return
	}
	hashed, err := util.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if err := h.conn(c).Model(user).Update("password", hashed).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, user)
}

func (h *Handler) updateUserData(c *gin.Context) {
	var req userDataRequest
	if !bindJSON(c, &req) {
		return
	}
	user, ok := h.currentUserRecord(c)
	if !ok {
		return
	}
	if err := h.checkUserUnique(c, req, user.ID); err != nil {
		response.Abort(c, err)
		return
	}
	user.Username = req.Username
	user.Email = req.Email
	if err := h.conn(c).Save(user).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, user)
}
