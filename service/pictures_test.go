package service

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"restlab/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) upload(flatID, filename, content, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("picture", filename)
	require.NoError(e.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(e.t, err)
	require.NoError(e.t, mw.WriteField("description", "Kitchen"))
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flats/"+flatID+"/pictures", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return e.serve(req)
}

func TestUploadPicture(t *testing.T) {
	e := newTestEnv(t)

	w := e.upload("2", "my room.jpg", "jpeg-bytes", e.landlord(1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pic := data(t, w)
	assert.Equal(t, "flat2_my_room.jpg", pic["name"])
	assert.Equal(t, "/flat_2/flat2_my_room.jpg", pic["path"])
	assert.Equal(t, "Kitchen", pic["description"])
	assert.Equal(t, "flat2", pic["flat"].(map[string]any)["identifier"])

	stored, err := os.ReadFile(filepath.Join(e.cfg.Upload.Dir, "flat_2", "flat2_my_room.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(stored))

	w = e.upload("2", "my room.jpg", "again", e.landlord(1))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Picture with name flat2_my_room.jpg already exists", message(t, w))

	w = e.upload("2", "notes.txt", "text", e.landlord(1))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "File extension must be one of: jpg, jpeg, png, gif", message(t, w))

	w = e.upload("3", "sea.png", "png-bytes", e.landlord(1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Flat with id 3 not found", message(t, w))
}

func TestServePictures(t *testing.T) {
	e := newTestEnv(t)
	w := e.upload("2", "view.png", "png-bytes", e.landlord(1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/v1/pictures/1/file", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	w = e.do(http.MethodGet, "/files/flat_2/flat2_view.png", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	w = e.do(http.MethodPut, "/files/flat_2/evil.png", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = e.do(http.MethodGet, "/api/v1/pictures", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 1)
	assert.EqualValues(t, 1, decode(t, w)["pagination"].(map[string]any)["total_records"])

	w = e.do(http.MethodGet, "/api/v1/flats/2/pictures", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 1)

	w = e.do(http.MethodGet, "/api/v1/flats/1/pictures", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, w))
}

func TestDeletePicture(t *testing.T) {
	e := newTestEnv(t)
	w := e.upload("2", "hall.gif", "gif-bytes", e.landlord(1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	file := filepath.Join(e.cfg.Upload.Dir, "flat_2", "flat2_hall.gif")

	w = e.do(http.MethodDelete, "/api/v1/pictures/1", nil, e.landlord(3))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.FileExists(t, file)

	w = e.do(http.MethodDelete, "/api/v1/pictures/1", nil, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Picture with id 1 has been deleted", confirmation(t, w))
	assert.NoFileExists(t, file)

	w = e.do(http.MethodGet, "/api/v1/pictures/1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteFlatRemovesPictureFiles(t *testing.T) {
	e := newTestEnv(t)
	w := e.upload("2", "bath.jpeg", "jpeg-bytes", e.landlord(1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodDelete, "/api/v1/flats/2", nil, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoFileExists(t, filepath.Join(e.cfg.Upload.Dir, "flat_2", "flat2_bath.jpeg"))

	w = e.do(http.MethodGet, "/api/v1/pictures", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, w))
}

func TestUploadKeepsExistingFile(t *testing.T) {
	e := newTestEnv(t)
	dir := filepath.Join(e.cfg.Upload.Dir, "flat_2")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	existing := filepath.Join(dir, "flat2_door.png")
	require.NoError(t, os.WriteFile(existing, []byte("first"), 0o644))

	w := e.upload("2", "door.png", "second", e.landlord(1))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Picture with name flat2_door.png already exists", message(t, w))

	stored, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "first", string(stored))
	assert.Zero(t, countRows(t, e.db, &model.Picture{}))
}
