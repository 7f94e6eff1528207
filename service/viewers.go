package service

import (
	"fmt"
	"net/http"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"
	"restlab/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const msgNotOwner = "You can only modify your own account"

// RegisterViewers mounts the movie API accounts.
func (h *Handler) RegisterViewers(r *gin.RouterGroup) {
	viewer := h.Authenticate(viewerOnly)

	g := r.Group("/viewers")
	g.POST("", RequireJSON(), h.registerViewer)
	g.POST("/login", h.LoginLimit(), RequireJSON(), h.loginViewer)
	g.POST("/logout", viewer, h.logout)
	g.GET("", viewer, h.listViewers)
	g.GET("/:id", viewer, h.getViewer)
	g.PUT("/:id", RequireJSON(), viewer, h.updateViewer)
	g.DELETE("/:id", viewer, h.deleteViewer)
}

type viewerRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

func viewerPrincipal(v *model.Viewer) util.Principal {
	return util.Principal{Kind: model.KindViewer, ID: v.ID, Identifier: v.Username}
}

func (h *Handler) checkUsernameFree(c *gin.Context, username string, except uint) error {
	var n int64
	tx := h.conn(c).Model(&model.Viewer{}).Where("username = ?", username)
	if except != 0 {
		tx = tx.Where("id <> ?", except)
	}
	if err := tx.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return response.Conflict("Viewer with username %s already exists", username)
	}
	return nil
}

func (h *Handler) registerViewer(c *gin.Context) {
	var req viewerRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.checkUsernameFree(c, req.Username, 0); err != nil {
		response.Abort(c, err)
		return
	}
	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, err)
		return
	}
	viewer := model.Viewer{Username: req.Username, Password: hashed}
	if err := h.conn(c).Create(&viewer).Error; err != nil {
		response.Abort(c, err)
		return
	}
	token, err := h.tokens.CreateToken(viewerPrincipal(&viewer))
	if err != nil {
		response.Internal(c, err)
		return
	}
	tokensIssued.WithLabelValues(string(model.KindViewer)).Inc()
	response.Registered(c, viewer, token)
}

func (h *Handler) loginViewer(c *gin.Context) {
	var req viewerRequest
	if !bindJSON(c, &req) {
		return
	}
	var viewer model.Viewer
	err := h.conn(c).Where("username = ?", req.Username).First(&viewer).Error
	if err != nil && !isNotFound(err) {
		response.Internal(c, err)
		return
	}
	if err != nil || !util.CheckPassword(viewer.Password, req.Password) {
		response.UnauthorizedError(c, "Invalid credentials")
		return
	}
	h.issueToken(c, http.StatusOK, viewerPrincipal(&viewer))
}

func (h *Handler) listViewers(c *gin.Context) {
	q := h.listQuery(c)
	viewers, err := orm.Find[model.Viewer](h.conn(c), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Viewer{}, q, viewers, nil)
}

func (h *Handler) findViewer(c *gin.Context, id uint) (*model.Viewer, error) {
	var viewer model.Viewer
	err := h.conn(c).First(&viewer, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Viewer with id %d not found", id)
	}
	return &viewer, err
}

func (h *Handler) getViewer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewer, err := h.findViewer(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewer)
}

// ownViewer loads viewer id and refuses anyone but the account itself.
func (h *Handler) ownViewer(c *gin.Context, id uint) (*model.Viewer, error) {
	viewer, err := h.findViewer(c, id)
	if err != nil {
		return nil, err
	}
	if viewer.ID != principal(c).ID {
		return nil, response.NewError(http.StatusForbidden, msgNotOwner)
	}
	return viewer, nil
}

func (h *Handler) updateViewer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req viewerRequest
	if !bindJSON(c, &req) {
		return
	}
	viewer, err := h.ownViewer(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.checkUsernameFree(c, req.Username, viewer.ID); err != nil {
		response.Abort(c, err)
		return
	}
	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, err)
		return
	}
	viewer.Username = req.Username
	viewer.Password = hashed
	if err := h.conn(c).Save(viewer).Error; err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewer)
}

// deleteViewer removes the account with its ratings and revokes the token
// used for the call.
func (h *Handler) deleteViewer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewer, err := h.ownViewer(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	err = h.conn(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("viewer_id = ?", viewer.ID).Delete(&model.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Viewer{}, viewer.ID).Error
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	info := principal(c)
	if err := h.revoker.Revoke(c.Request.Context(), info.JTI, info.ExpiresAt.Sub(timeNow())); err != nil {
		response.Internal(c, err)
		return
	}
	response.Done(c, fmt.Sprintf("Viewer with id %d has been deleted", id))
}
