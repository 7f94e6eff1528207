package logutils

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut, prevLevel, prevFormatter := Log.Out, Log.GetLevel(), Log.Formatter
	Log.SetOutput(buf)
	Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() {
		Log.SetOutput(prevOut)
		Log.SetLevel(prevLevel)
		Log.SetFormatter(prevFormatter)
	})
	return buf
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { _ = Configure(Options{Level: "warn"}) })

	require.NoError(t, Configure(Options{Level: "debug", Format: "json"}))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)

	require.NoError(t, Configure(Options{Level: "error", File: filepath.Join(t.TempDir(), "app.log"), MaxSize: 1}))
	assert.Equal(t, logrus.ErrorLevel, Log.GetLevel())

	assert.Error(t, Configure(Options{Level: "loud"}))
}

func TestGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?page=2", http.NoBody))
	assert.Contains(t, buf.String(), `"path":"/ok?page=2"`)
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", http.NoBody))
	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"status":404`)
}

func TestGormLoggerTrace(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger("warn")
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), "sql error")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "slow sql")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("whatever"))
}
