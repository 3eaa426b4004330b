package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	config "github.com/phillip/chapter-directory-go/config"
)

// Upload folders, one per kind of media.
const (
	FolderProfiles   = "profiles"
	FolderEvents     = "events"
	FolderPortfolios = "portfolios"
)

var ErrMediaNotConfigured = errors.New("cloudinary credentials not configured")

func cloudinaryClient(cfg *config.Config) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, ErrMediaNotConfigured
	}
	return cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
}

// UploadImage stores one multipart file under folder and returns its HTTPS URL.
func UploadImage(cfg *config.Config, fileHeader *multipart.FileHeader, folder string) (string, error) {
	cld, err := cloudinaryClient(cfg)
	if err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fileHeader.Filename, err)
	}
	return resp.SecureURL, nil
}

// UploadImages uploads every file in order and stops at the first failure.
func UploadImages(cfg *config.Config, files []*multipart.FileHeader, folder string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		u, err := UploadImage(cfg, fh, folder)
		if err != nil {
			return urls, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// DeleteImage removes a previously uploaded image given its delivery URL.
func DeleteImage(cfg *config.Config, imageURL string) error {
	cld, err := cloudinaryClient(cfg)
	if err != nil {
		return err
	}

	publicID, err := publicIDFromURL(imageURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	return nil
}

// publicIDFromURL maps
// https://res.cloudinary.com/demo/image/upload/v1712/events/abc.jpg to
// events/abc.
func publicIDFromURL(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(parts)-1 {
		return "", fmt.Errorf("not a cloudinary delivery url: %s", imageURL)
	}

	rest := parts[idx+1:]
	if isVersion(rest[0]) && len(rest) > 1 {
		rest = rest[1:]
	}
	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
