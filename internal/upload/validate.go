package upload

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// MaxFileSize is the largest accepted upload, images and documents alike.
const MaxFileSize = 20 * 1024 * 1024

// Accepted content types.
var (
	ImageTypes    = []string{"image/jpeg", "image/png", "image/jpg", "image/webp"}
	DocumentTypes = append([]string{"application/pdf"}, ImageTypes...)
)

func accepted(contentType string, allow []string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}
	return false
}

// ValidateImage checks one image against the image allowlist and the size
// limit. Errors wrap ErrFileType or ErrFileTooLarge.
func ValidateImage(f File) error {
	if !accepted(f.ContentType, ImageTypes) {
		return fmt.Errorf("%w: %s is %q; only JPG, PNG or WEBP images are accepted",
			types.ErrFileType, f.Name, f.ContentType)
	}
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: %s is %s; the limit is %s",
			types.ErrFileTooLarge, f.Name, humanize.IBytes(uint64(f.Size)), humanize.IBytes(MaxFileSize))
	}
	return nil
}

// ValidateImages checks every file and reports the first failure. The
// batch is accepted only when every file passes.
func ValidateImages(files []File) error {
	for _, f := range files {
		if err := ValidateImage(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDocument checks a single document against the document allowlist
// (PDF plus the image types) and the size limit.
func ValidateDocument(f File) error {
	if !accepted(f.ContentType, DocumentTypes) {
		return fmt.Errorf("%w: %s is %q; documents must be PDF, JPG, PNG or WEBP",
			types.ErrFileType, f.Name, f.ContentType)
	}
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: %s is %s; the limit is %s",
			types.ErrFileTooLarge, f.Name, humanize.IBytes(uint64(f.Size)), humanize.IBytes(MaxFileSize))
	}
	return nil
}
