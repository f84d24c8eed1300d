package attachments

import (
	"strings"

	"booking_portal_backend/platform/apperr"
)

// allowedContentTypes are the photo formats accepted from phones and browsers.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

func normalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// ValidateContentType checks that the upload is a supported photo format.
func ValidateContentType(contentType string) error {
	if _, ok := allowedContentTypes[normalizeContentType(contentType)]; !ok {
		return apperr.Validation("only JPEG, PNG, WebP and HEIC photos are accepted").WithField("photos")
	}
	return nil
}

// ValidateFileSize checks that the file size is within limits.
func ValidateFileSize(size, max int64) error {
	if size <= 0 {
		return apperr.Validation("photo is empty").WithField("photos")
	}
	if max > 0 && size > max {
		return apperr.Validation("photo is too large").WithField("photos")
	}
	return nil
}
