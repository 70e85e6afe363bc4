package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"meetmap/internal/domain"
	"meetmap/internal/service"

	"github.com/gin-gonic/gin"
)

// uploadedPhoto is a multipart image opened for reading.
type uploadedPhoto struct {
	service.Photo
	file multipart.File
}

func (p *uploadedPhoto) Close() error {
	return p.file.Close()
}

// formPhoto opens the named file part. On failure it returns nil together
// with the status and message to send.
func formPhoto(c *gin.Context, field string) (*uploadedPhoto, int, string) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, http.StatusBadRequest, service.ErrPhotoRequired.Error()
	}
	if fh.Size > domain.MaxPhotoBytes {
		return nil, http.StatusRequestEntityTooLarge, "photo too large (max 5MB)"
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" && !strings.HasPrefix(ct, "image/") {
		return nil, http.StatusUnsupportedMediaType, "photo must be an image"
	}
	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, "could not read photo"
	}
	return &uploadedPhoto{
		Photo: service.Photo{Reader: f, Size: fh.Size, Filename: fh.Filename},
		file:  f,
	}, 0, ""
}
