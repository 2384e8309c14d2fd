package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/biofert/core/internal/infrastructure/config"
	"github.com/biofert/core/internal/ports"
)

// CloudinaryHost pushes assets to the Cloudinary CDN
type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryHost creates a Cloudinary-backed image host
func NewCloudinaryHost(cfg config.CloudinaryConfig) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &CloudinaryHost{cld: cld}, nil
}

func (h *CloudinaryHost) Upload(ctx context.Context, asset ports.Asset) (string, error) {
	params := uploader.UploadParams{
		Folder:       asset.Folder,
		PublicID:     publicID(asset),
		ResourceType: "image",
	}
	if asset.Raw {
		params.ResourceType = "raw"
	}

	resp, err := h.cld.Upload.Upload(ctx, bytes.NewReader(asset.Data), params)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	return resp.SecureURL, nil
}

// publicID strips the extension for images, which Cloudinary derives from
// the stored format; raw assets keep it so the URL ends in .pdf.
func publicID(asset ports.Asset) string {
	if asset.Raw {
		return asset.Name
	}
	return strings.TrimSuffix(asset.Name, path.Ext(asset.Name))
}
