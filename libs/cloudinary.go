package libs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader accepts either a CLOUDINARY_URL or the three separate credentials.
func NewCloudinaryUploader(cloudinaryURL, cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	if cloudName != "" && apiKey != "" && apiSecret != "" {
		cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from params fail: %w", err)
		}
		return &CloudinaryUploader{cld: cld}, nil
	}

	if cloudinaryURL == "" {
		return nil, errors.New("cloudinary credentials not configured")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init from URL fail: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) UploadImage(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	base := strings.TrimSuffix(strings.ReplaceAll(filename, " ", "_"), filepath.Ext(filename))
	publicID := fmt.Sprintf("%d_%s", time.Now().Unix(), base)

	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		ResourceType:   "image",
		Transformation: "q_auto,f_auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp == nil {
		return "", errors.New("cloudinary response is nil")
	}
	if resp.SecureURL != "" {
		return resp.SecureURL, nil
	}
	if resp.URL != "" {
		return resp.URL, nil
	}
	return "", errors.New("both SecureURL and URL are empty")
}
