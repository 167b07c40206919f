// Package media wraps the hosted media service used for course thumbnails
// and lecture videos, plus the local temp-file handling around uploads.
package media

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

// Asset references a file stored on the media host.
type Asset struct {
	PublicID  string `json:"public_id" db:"public_id"`
	SecureURL string `json:"secure_url" db:"secure_url"`
}

// Hosted reports whether the asset lives on the media host rather than
// being an external link.
func (a Asset) Hosted() bool { return a.PublicID != "" }

type Client struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func New(cld *cloudinary.Cloudinary, folder string) *Client {
	return &Client{cld: cld, folder: folder}
}

// Upload pushes a local file to the media host and returns its stable
// identifier and URL.
func (c *Client) Upload(ctx context.Context, path string, resourceType string) (Asset, error) {
	res, err := c.cld.Upload.Upload(ctx, path, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("uploading %s to media host: %w", path, err)
	}

	if res.Error.Message != "" {
		return Asset{}, fmt.Errorf("uploading %s to media host: %s", path, res.Error.Message)
	}

	return Asset{PublicID: res.PublicID, SecureURL: res.SecureURL}, nil
}

// Destroy removes an asset from the media host.
func (c *Client) Destroy(ctx context.Context, publicID string, resourceType string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("destroying media asset[%s]: %w", publicID, err)
	}
	return nil
}

const probeTimeout = 15 * time.Second

// ProbeDuration asks ffprobe for the duration of a local file or remote
// URL, rendered in whole minutes ("12m"). Callers treat failures as
// best-effort and fall back to an empty duration.
func ProbeDuration(ctx context.Context, pathOrURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	data, err := ffprobe.ProbeURL(ctx, pathOrURL)
	if err != nil {
		return "", fmt.Errorf("probing duration of %s: %w", pathOrURL, err)
	}

	mins := int(math.Round(data.Format.DurationSeconds / 60))
	return fmt.Sprintf("%dm", mins), nil
}
