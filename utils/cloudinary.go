package utils

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	config "github.com/phillip/impact-connect-go/config"
)

func getCloudinaryInstance(cfg *config.Config) (*cloudinary.Cloudinary, error) {
	return cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
}

// UploadImage stores an event image and returns its delivery URL. The image
// argument is whatever the client sent in the payload: a data URI, a base64
// blob, or a remote URL — the uploader accepts all three.
func UploadImage(cfg *config.Config, image string) (string, error) {
	cld, err := getCloudinaryInstance(cfg)
	if err != nil {
		return "", fmt.Errorf("cloudinary config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	uploadResp, err := cld.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder: "events",
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %v", err)
	}

	return uploadResp.SecureURL, nil
}

// DeleteImage removes an image from Cloudinary using its full delivery URL.
func DeleteImage(cfg *config.Config, imageURL string) error {
	cld, err := getCloudinaryInstance(cfg)
	if err != nil {
		return fmt.Errorf("cloudinary config error: %v", err)
	}

	publicID, err := ExtractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %v", err)
	}

	return nil
}

// ExtractPublicID pulls the Cloudinary public ID out of a delivery URL.
// Example: https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
// yields "events/abc123".
func ExtractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(parsedURL.Path, "/")
	if len(parts) < 6 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	// Path shape: /<cloud>/image/upload/v<version>/<folder>/<file>.<ext>
	rest := parts[4:]
	if isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
