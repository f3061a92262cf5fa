package utils

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"azhome-server/config"
)

// Upload folders
const (
	FolderProfiles  = "azhome_profiles"
	FolderDocuments = "worker_documents"
	FolderPastWorks = "past_works"
)

// ValidateImageFile validates mimetype and size (<= 5MB)
func ValidateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// Uploader wraps the Cloudinary client for image storage
type Uploader struct {
	cld *cloudinary.Cloudinary
}

// NewUploader builds a Cloudinary client from the loaded configuration
func NewUploader() (*Uploader, error) {
	cfg := config.AppConfig.Cloudinary
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary is not configured")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", cfg.APIKey, cfg.APISecret, cfg.CloudName)
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &Uploader{cld: cld}, nil
}

// UploadImage stores an uploaded file in the given folder and returns its
// secure URL and public ID.
func (u *Uploader) UploadImage(ctx context.Context, header *multipart.FileHeader, folder string) (string, string, error) {
	file, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	overwrite := true
	unique := true
	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", "", err
	}
	return res.SecureURL, res.PublicID, nil
}

// DestroyImage removes a previously uploaded image. Failures are logged and
// swallowed so a stale asset never blocks a profile update.
func (u *Uploader) DestroyImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		log.Printf("Failed to delete cloudinary asset %s: %v", publicID, err)
	}
}
