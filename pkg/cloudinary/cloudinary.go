package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Optimized image params for fast frontend loading
const (
	ImageWidth = 800
	ThumbWidth = 200
	imageEager = "q_auto,f_auto,w_800,c_fill"
)

var eagerAsyncFalse = false

// Client uploads profile photos to Cloudinary.
type Client struct {
	cloudName string
	uploader  *uploader.API
}

// NewClient builds a Client from Cloudinary cloud name, API key, and secret.
func NewClient(cloudName, apiKey, apiSecret string) (*Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, fmt.Errorf("cloudinary uploader: %w", err)
	}
	return &Client{cloudName: cloudName, uploader: up}, nil
}

// BuildOptimizedImageURL returns a Cloudinary URL with transformations for optimized delivery.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

// PublicID drops the extension; Cloudinary appends the delivered format itself.
func PublicID(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// UploadImage uploads an image with eager optimizations and returns its secure URL.
// size is unused; the SDK streams the reader.
func (c *Client) UploadImage(ctx context.Context, r io.Reader, _ int64, folder, name string) (string, error) {
	result, err := c.uploader.Upload(ctx, r, uploader.UploadParams{
		Folder:     folder,
		PublicID:   PublicID(name),
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return BuildOptimizedImageURL(c.cloudName, result.PublicID, ImageWidth), nil
}
