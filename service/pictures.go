package service

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"restlab/dao/model"
	"restlab/orm"
	"restlab/response"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func (h *Handler) RegisterPictures(r *gin.RouterGroup) {
	landlord := h.Authenticate(landlordOnly)

	r.GET("/pictures", h.listPictures)
	r.GET("/pictures/:id", h.getPicture)
	r.GET("/pictures/:id/file", h.getPictureFile)
	r.DELETE("/pictures/:id", landlord, h.deletePicture)

	r.GET("/flats/:id/pictures", h.listFlatPictures)
	r.POST("/flats/:id/pictures", landlord, h.uploadPicture)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// pictureName derives the stored name from the client's file name.
func pictureName(flatID uint, filename string) string {
	base := unsafeName.ReplaceAllString(filepath.Base(filename), "_")
	return fmt.Sprintf("flat%d_%s", flatID, strings.Trim(base, "_"))
}

func (h *Handler) allowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && lo.Contains(h.cfg.Upload.AllowedExtensions, ext)
}

func (h *Handler) listPictures(c *gin.Context) {
	q := h.listQuery(c)
	pictures, page, err := orm.FindPage[model.Picture](h.conn(c), q, c.Request.URL.Path, "Flat")
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Picture{}, q, lo.Map(pictures, func(p model.Picture, _ int) pictureView {
		return viewPicture(p)
	}), &page)
}

func (h *Handler) listFlatPictures(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	flat, err := h.findFlat(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	q := h.listQuery(c)
	pictures, err := orm.Find[model.Picture](h.conn(c).Where("flat_id = ?", flat.ID), q)
	if err != nil {
		response.Abort(c, err)
		return
	}
	renderList(c, h.db, &model.Picture{}, q, pictures, nil)
}

func (h *Handler) findPicture(c *gin.Context, id uint) (*model.Picture, error) {
	var picture model.Picture
	err := h.conn(c).Preload("Flat").First(&picture, id).Error
	if isNotFound(err) {
		return nil, response.NotFound("Picture with id %d not found", id)
	}
	return &picture, err
}

func (h *Handler) getPicture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	picture, err := h.findPicture(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, viewPicture(*picture))
}

func (h *Handler) getPictureFile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	picture, err := h.findPicture(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if err := h.serveStored(c, picture.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.NotFoundError(c, fmt.Sprintf("File of picture with id %d not found", id))
			return
		}
		response.Internal(c, err)
	}
}

func (h *Handler) uploadPicture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	flat, err := h.ownFlat(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}

	fh, err := c.FormFile("picture")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.FieldErrors{"picture": {response.MissingField}})
		return
	}
	if !h.allowedExtension(fh.Filename) {
		response.Error(c, http.StatusUnsupportedMediaType,
			"File extension must be one of: "+strings.Join(h.cfg.Upload.AllowedExtensions, ", "))
		return
	}
	if h.cfg.Upload.MaxSize > 0 && fh.Size > h.cfg.Upload.MaxSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	name := pictureName(flat.ID, fh.Filename)
	clash := fmt.Sprintf("Picture with name %s already exists", name)
	var n int64
	if err := h.conn(c).Model(&model.Picture{}).Where("name = ?", name).Count(&n).Error; err != nil {
		response.Internal(c, err)
		return
	}
	if n > 0 {
		response.ConflictError(c, clash)
		return
	}

	src, err := fh.Open()
	if err != nil {
		response.Internal(c, err)
		return
	}
	defer src.Close()

	// the row claims the name before the file is created
	dir := path.Join("/", fmt.Sprintf("flat_%d", flat.ID))
	picture := model.Picture{
		Name:        name,
		Path:        path.Join(dir, name),
		Description: c.PostForm("description"),
		FlatID:      flat.ID,
	}
	err = h.conn(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&picture).Error; err != nil {
			return err
		}
		_, err := h.store(c.Request.Context(), dir, name, src)
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, os.ErrExist):
		response.ConflictError(c, clash)
		return
	case err != nil:
		response.Abort(c, err)
		return
	}
	picture.Flat = *flat
	response.Created(c, viewPicture(picture))
}

func (h *Handler) deletePicture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	picture, err := h.findPicture(c, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	if picture.Flat.LandlordID != principal(c).ID {
		response.NotFoundError(c, fmt.Sprintf("Picture with id %d not found", id))
		return
	}
	if err := h.conn(c).Delete(&model.Picture{}, picture.ID).Error; err != nil {
		response.Abort(c, err)
		return
	}
	h.removeStored(c, picture.Path)
	response.Done(c, fmt.Sprintf("Picture with id %d has been deleted", id))
}
