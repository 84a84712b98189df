package utils

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

const PlaceholderImage = "/images/placeholder.png"

const MaxImageSize = 5 * 1024 * 1024

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageResolver turns stored image references into URLs the storefront can load.
type ImageResolver struct {
	BaseURL string
	Bucket  string
}

func NewImageResolver(baseURL, bucket string) *ImageResolver {
	return &ImageResolver{BaseURL: strings.TrimRight(baseURL, "/"), Bucket: bucket}
}

// Resolve passes absolute http(s) URLs through, maps bare paths onto the
// public storage bucket and falls back to the placeholder for anything else.
func (r *ImageResolver) Resolve(path *string) string {
	if path == nil {
		return PlaceholderImage
	}
	p := strings.TrimSpace(*path)
	if p == "" {
		return PlaceholderImage
	}

	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return PlaceholderImage
		}
		return p
	}

	if r.BaseURL == "" || r.Bucket == "" {
		return PlaceholderImage
	}
	resolved, err := url.JoinPath(r.BaseURL, "storage/v1/object/public", r.Bucket, strings.TrimLeft(p, "/"))
	if err != nil {
		return PlaceholderImage
	}
	return resolved
}

func ValidateImageFile(filename string, size int64) error {
	if size > MaxImageSize {
		return errors.New("file size exceeds maximum allowed size")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExtensions[ext] {
		return errors.New("invalid file type. Only jpg, jpeg, png, gif, webp allowed")
	}
	return nil
}
