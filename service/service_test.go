package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"restlab/config"
	"restlab/dao/model"
	"restlab/dao/query"
	"restlab/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	cfg    *config.Config
	h      *Handler
	router *gin.Engine
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.App.Env = config.EnvTesting
	cfg.Auth.SecretKey = testSecret
	cfg.Auth.LoginRate = 0
	cfg.Upload.Dir = t.TempDir()
	return cfg
}

// newTestEnv serves the full router on a migrated in-memory database loaded
// with the sample data.
func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	db, err := query.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, query.AddSampleData(db))

	cfg := testConfig(t)
	for _, fn := range tweak {
		fn(cfg)
	}
	h := NewHandler(Options{DB: db, Config: cfg})
	return &testEnv{t: t, db: db, cfg: cfg, h: h, router: NewRouter(h)}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// do sends body as JSON when it is not nil.
func (e *testEnv) do(method, target string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(req)
}

// token signs a token without going through a login endpoint.
func (e *testEnv) token(kind model.PrincipalKind, id uint, identifier string) string {
	e.t.Helper()
	token, err := e.h.tokens.CreateToken(util.Principal{Kind: kind, ID: id, Identifier: identifier})
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) landlord(id uint) string {
	return e.token(model.KindLandlord, id, "")
}

func (e *testEnv) tenant(id uint) string {
	return e.token(model.KindTenant, id, "")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// message returns the message of an envelope, failing when it is not a string.
func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, ok := decode(t, w)["message"].(string)
	require.True(t, ok, w.Body.String())
	return msg
}

// confirmation returns the text of a delete or logout answer.
func confirmation(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	assert.NotContains(t, body, "message")
	msg, ok := body["data"].(string)
	require.True(t, ok, w.Body.String())
	return msg
}

func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	fields, ok := decode(t, w)["message"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return fields
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := decode(t, w)["data"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return d
}

func dataList(t *testing.T, w *httptest.ResponseRecorder) []any {
	t.Helper()
	d, ok := decode(t, w)["data"].([]any)
	require.True(t, ok, w.Body.String())
	return d
}

func countRows(t *testing.T, db *gorm.DB, m any, where ...any) int64 {
	t.Helper()
	var n int64
	tx := db.Model(m)
	if len(where) > 0 {
		tx = tx.Where(where[0], where[1:]...)
	}
	require.NoError(t, tx.Count(&n).Error)
	return n
}
