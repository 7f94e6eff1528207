package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"restlab/logutils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"golang.org/x/net/webdav"
)

// FilesPrefix is where the upload folder is browsable over read-only WebDAV.
const FilesPrefix = "/files"

// readMethods are the WebDAV methods that never change the upload folder.
var readMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions, "PROPFIND"}

func (h *Handler) davHandler() *webdav.Handler {
	h.davOnce.Do(func() {
		h.dav = &webdav.Handler{
			Prefix:     FilesPrefix,
			FileSystem: h.storage,
			LockSystem: webdav.NewMemLS(),
			Logger: func(r *http.Request, err error) {
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					logutils.Log.WithField("path", r.URL.Path).Error(err)
				}
			},
		}
	})
	return h.dav
}

// WebDav serves the uploaded pictures read-only.
func (h *Handler) WebDav(c *gin.Context) {
	if !lo.Contains(readMethods, c.Request.Method) {
		c.Header("Allow", strings.Join(readMethods, ", "))
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}
	h.davHandler().ServeHTTP(c.Writer, c.Request)
}

// store writes r to a new file dir/name inside the upload folder and returns
// the stored path. An existing file is never overwritten: that fails with an
// error matching os.ErrExist.
func (h *Handler) store(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	if err := h.storage.Mkdir(ctx, dir, 0o755); err != nil && !os.IsExist(err) {
		return "", err
	}
	p := path.Join(dir, name)
	f, err := h.storage.OpenFile(ctx, p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = h.storage.RemoveAll(ctx, p)
		return "", err
	}
	return p, f.Close()
}

// removeStored deletes a stored file. Failures are only logged: the record
// is already gone.
func (h *Handler) removeStored(c *gin.Context, p string) {
	if err := h.storage.RemoveAll(c.Request.Context(), p); err != nil {
		logutils.WithRequest(c).WithError(err).Warnf("remove %s", p)
	}
}

// serveStored streams a stored file with range and caching support.
func (h *Handler) serveStored(c *gin.Context, p string) error {
	f, err := h.storage.OpenFile(c.Request.Context(), p, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return os.ErrNotExist
	}
	http.ServeContent(c.Writer, c.Request, fi.Name(), fi.ModTime(), f)
	return nil
}
