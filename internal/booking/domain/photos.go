package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPhotoIndex      = errors.New("photo index out of range")
	ErrPreviewMismatch = errors.New("each photo needs exactly one preview")
)

// AppendPhotos adds photos to the end of the list together with their previews.
func AppendPhotos(form *FormState, photos []Photo, previews []string) error {
	if len(photos) != len(previews) {
		return ErrPreviewMismatch
	}
	form.Photos = append(form.Photos, photos...)
	form.PhotoPreviews = append(form.PhotoPreviews, previews...)
	return nil
}

// RemovePhoto splices photo i and its preview out of both lists, keeping the
// relative order of the remainder. It returns the removed photo.
func RemovePhoto(form *FormState, i int) (Photo, error) {
	if i < 0 || i >= len(form.Photos) || i >= len(form.PhotoPreviews) {
		return Photo{}, fmt.Errorf("%w: %d", ErrPhotoIndex, i)
	}
	removed := form.Photos[i]
	form.Photos = append(form.Photos[:i:i], form.Photos[i+1:]...)
	form.PhotoPreviews = append(form.PhotoPreviews[:i:i], form.PhotoPreviews[i+1:]...)
	return removed, nil
}

// PhotoKeys lists the storage keys in order.
func PhotoKeys(photos []Photo) []string {
	keys := make([]string, 0, len(photos))
	for _, p := range photos {
		keys = append(keys, p.Key)
	}
	return keys
}
