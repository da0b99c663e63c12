package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go-network-backend/internal/delivery/http/response"
	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"
	"go-network-backend/pkg/blob"

	"github.com/gin-gonic/gin"
)

// multipartSlack covers form boundaries and headers around the file part.
const multipartSlack = 1 << 20

type MediaHandler struct {
	mediaUC  domain.MediaUsecase
	maxBytes int64
}

func NewMediaHandler(protected *gin.RouterGroup, mediaUC domain.MediaUsecase, maxBytes int64) {
	handler := &MediaHandler{mediaUC: mediaUC, maxBytes: maxBytes}

	protected.POST("/profile/image", handler.UploadAvatar)
	protected.POST("/profile/cover", handler.UploadCover)
	protected.DELETE("/profile/cover", handler.RemoveCover)
}

// UploadAvatar godoc
// @Summary      Upload profile image
// @Description  jpg, jpeg or png up to 5MB in the "image" form field
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      400  {object}  response.Response
// @Router       /profile/image [post]
// @Security     BearerAuth
func (h *MediaHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, "image_url", h.mediaUC.UploadAvatar)
}

// UploadCover godoc
// @Summary      Upload cover image
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      400  {object}  response.Response
// @Router       /profile/cover [post]
// @Security     BearerAuth
func (h *MediaHandler) UploadCover(c *gin.Context) {
	h.upload(c, "cover_url", h.mediaUC.UploadCover)
}

// RemoveCover godoc
// @Summary      Remove cover image
// @Tags         media
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /profile/cover [delete]
// @Security     BearerAuth
func (h *MediaHandler) RemoveCover(c *gin.Context) {
	if err := h.mediaUC.RemoveCover(c.Request.Context(), c.GetString(string(domain.KeyUserID))); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Cover image removed", nil)
}

type uploadFunc func(ctx context.Context, userID, filename string, file io.ReadSeeker) (string, error)

func (h *MediaHandler) upload(c *gin.Context, key string, do uploadFunc) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartSlack)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.BadRequest(fmt.Sprintf("File too large. Max %dMB.", h.maxBytes>>20)))
			return
		}
		c.Error(apperror.BadRequest("No file part"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	publicPath, err := do(c.Request.Context(), c.GetString(string(domain.KeyUserID)), fileHeader.Filename, file)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Image uploaded successfully", gin.H{key: publicPath})
}

// ImageHandler serves derived images from the blob store.
type ImageHandler struct {
	store *blob.Store
}

func NewImageHandler(r gin.IRoutes, prefix string, store *blob.Store) {
	handler := &ImageHandler{store: store}
	r.GET(path.Join(prefix, ":filename"), handler.Serve)
}

func (h *ImageHandler) Serve(c *gin.Context) {
	name := c.Param("filename")
	if strings.HasPrefix(name, ".") {
		c.Error(apperror.NotFound("Image not found"))
		return
	}
	f, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, blob.ErrInvalidName) || errors.Is(err, fs.ErrNotExist) {
			c.Error(apperror.NotFound("Image not found"))
			return
		}
		c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.Error(apperror.NotFound("Image not found"))
		return
	}

	// Names are never reused, so a served file never changes.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}
