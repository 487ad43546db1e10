package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

const imageResource = "image"

// CDNUploader stores images in a Cloudinary folder and returns their secure URLs
type CDNUploader struct {
	cld      *cloudinary.Cloudinary
	folder   string
	maxBytes int
	logger   *zap.Logger
}

// NewCDNUploader creates a CDN uploader from cfg. A non-empty cfg.Endpoint
// replaces the API host.
func NewCDNUploader(cfg *config.UploadConfig) (*CDNUploader, error) {
	conf, err := cldconfig.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cdn client: %w", err)
	}
	if cfg.Endpoint != "" {
		conf.API.UploadPrefix = strings.TrimSuffix(cfg.Endpoint, "/")
	}
	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cdn client: %w", err)
	}
	return &CDNUploader{
		cld:      cld,
		folder:   cfg.Folder,
		maxBytes: cfg.MaxBytes,
		logger:   logging.WithComponent("cdn-uploader"),
	}, nil
}

// Upload implements Uploader. The image is sent as a base64 data URI.
func (u *CDNUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "upload.cdn")
	defer span.End()

	if err := checkImage(data, contentType, u.maxBytes); err != nil {
		return "", err
	}

	file := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     uuid.NewString(),
		ResourceType: imageResource,
	})
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload rejected: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("upload response missing secure_url")
	}

	u.logger.Debug("Image uploaded",
		zap.String("public_id", resp.PublicID),
		zap.Int("bytes", len(data)))

	return resp.SecureURL, nil
}

// Remove implements Remover
func (u *CDNUploader) Remove(ctx context.Context, url string) error {
	ctx, span := telemetry.StartSpan(ctx, "upload.cdn.remove")
	defer span.End()

	publicID, ok := publicIDFromURL(url)
	if !ok {
		return fmt.Errorf("%w: %s is not a cdn delivery url", ErrNotFound, url)
	}

	resp, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: imageResource,
	})
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("destroy rejected: %s", resp.Error.Message)
	}
	if resp.Result != "ok" {
		return fmt.Errorf("%w: %s (%s)", ErrNotFound, publicID, resp.Result)
	}

	u.logger.Debug("Image removed", zap.String("public_id", publicID))
	return nil
}

// publicIDFromURL extracts "folder/name" from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1700000000/folder/name.jpg
func publicIDFromURL(url string) (string, bool) {
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok || rest == "" {
		return "", false
	}
	if version, tail, found := strings.Cut(rest, "/"); found && isVersion(version) {
		rest = tail
	}
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	return rest, rest != ""
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
