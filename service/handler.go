package service

import (
	"errors"
	"strconv"
	"sync"

	"restlab/config"
	"restlab/dao/query"
	"restlab/orm"
	"restlab/response"
	"restlab/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/webdav"
	"gorm.io/gorm"
)

// Handler carries what the route handlers share.
type Handler struct {
	db        *gorm.DB
	cfg       *config.Config
	tokens    *util.TokenManager
	revoker   util.Revoker
	storage   webdav.FileSystem
	customers *query.CustomerStore
	limiter   *RateLimiter

	davOnce sync.Once
	dav     *webdav.Handler
}

// Options wires a Handler. Revoker and Storage default to an in-memory
// revoker and a webdav.Dir on cfg.Upload.Dir.
type Options struct {
	DB      *gorm.DB
	Config  *config.Config
	Tokens  *util.TokenManager
	Revoker util.Revoker
	Storage webdav.FileSystem
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		db:        opts.DB,
		cfg:       opts.Config,
		tokens:    opts.Tokens,
		revoker:   opts.Revoker,
		storage:   opts.Storage,
		customers: query.NewCustomerStore(opts.DB),
	}
	if h.tokens == nil {
		h.tokens = util.NewTokenManager(h.cfg.Auth.SecretKey, h.cfg.Auth.TokenTTL)
	}
	if h.revoker == nil {
		h.revoker = util.NewMemoryRevoker()
	}
	if h.storage == nil {
		h.storage = webdav.Dir(h.cfg.Upload.Dir)
	}
	h.limiter = NewRateLimiter(h.cfg.Auth.LoginRate, h.cfg.Auth.LoginWindow)
	return h
}

// conn binds the database to the request context.
func (h *Handler) conn(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context())
}

func (h *Handler) listQuery(c *gin.Context) orm.Query {
	return orm.NewQuery(c.Request.URL.RawQuery, h.cfg.Pagination.PerPage, h.cfg.Pagination.MaxPerPage)
}

func (h *Handler) issueToken(c *gin.Context, status int, p util.Principal) {
	token, err := h.tokens.CreateToken(p)
	if err != nil {
		response.Internal(c, err)
		return
	}
	tokensIssued.WithLabelValues(string(p.Kind)).Inc()
	response.Token(c, status, token)
}

// logout revokes the token that authenticated the request.
func (h *Handler) logout(c *gin.Context) {
	info := principal(c)
	ttl := info.ExpiresAt.Sub(timeNow())
	if err := h.revoker.Revoke(c.Request.Context(), info.JTI, ttl); err != nil {
		response.Internal(c, err)
		return
	}
	response.Done(c, "You have been logged out")
}

// bindJSON decodes and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ValidationError(c, err)
		return false
	}
	return true
}

// idParam reads a positive integer path parameter; anything else is a 404
// like an unmatched route.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFoundError(c, "Resource not found")
		return 0, false
	}
	return uint(id), true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// passwordRequest changes the password of the authenticated account.
type passwordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=255"`
}

// loginRequest authenticates landlords and tenants.
type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// personRequest is the editable data of landlords and tenants.
type personRequest struct {
	Identifier  string `json:"identifier" binding:"required,max=50"`
	Email       string `json:"email" binding:"required,email,max=255"`
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Phone       string `json:"phone" binding:"required,max=50"`
	Address     string `json:"address" binding:"required,max=255"`
	Description string `json:"description"`
}

type registerPersonRequest struct {
	personRequest
	Password string `json:"password" binding:"required,min=6,max=255"`
}
