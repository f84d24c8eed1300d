// Package attachments stores booking photos in object storage and hands out
// short-lived preview URLs for them.
package attachments

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// PreviewTTL is how long a photo preview URL stays valid.
	PreviewTTL = 15 * time.Minute
	// MaxPhotos caps the number of photos on one booking.
	MaxPhotos = 8

	uploadConcurrency = 4
	keyPrefix         = "bookings"
)

// File is one uploaded file awaiting storage.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Service uploads, previews and removes booking photos.
type Service struct {
	store       ObjectStore
	maxFileSize int64
	log         *logger.Logger
}

// NewService creates a photo service. maxFileSize <= 0 disables the size cap.
func NewService(store ObjectStore, maxFileSize int64, log *logger.Logger) *Service {
	return &Service{store: store, maxFileSize: maxFileSize, log: log}
}

// Upload validates and stores files under the session's prefix, concurrently.
// It returns the stored photos with their preview URLs, in input order. If any
// upload fails, the ones that succeeded are removed again.
func (s *Service) Upload(ctx context.Context, sessionID string, existing int, files []File) ([]domain.Photo, []string, error) {
	if len(files) == 0 {
		return nil, nil, apperr.Validation("no photos provided").WithField("photos")
	}
	if existing+len(files) > MaxPhotos {
		return nil, nil, apperr.Validation(fmt.Sprintf("at most %d photos can be attached", MaxPhotos)).WithField("photos")
	}
	for _, f := range files {
		if err := ValidateContentType(f.ContentType); err != nil {
			return nil, nil, err
		}
		if err := ValidateFileSize(f.Size, s.maxFileSize); err != nil {
			return nil, nil, err
		}
	}

	photos := make([]domain.Photo, len(files))
	previews := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			photo, err := s.put(gctx, sessionID, f)
			if err != nil {
				return err
			}
			photos[i] = photo
			preview, err := s.store.PresignGet(gctx, photo.Key, PreviewTTL)
			if err != nil {
				return err
			}
			previews[i] = preview
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.cleanup(context.WithoutCancel(ctx), photos)
		s.log.WithContext(ctx).UpstreamError("object_storage", "upload", 0, err)
		return nil, nil, apperr.Wrap(apperr.KindUnavailable, "photos could not be stored", err)
	}
	return photos, previews, nil
}

func (s *Service) put(ctx context.Context, sessionID string, f File) (domain.Photo, error) {
	contentType := normalizeContentType(f.ContentType)
	key := path.Join(keyPrefix, sessionID, uuid.NewString()+extension(f.Name, contentType))

	rc, err := f.Open()
	if err != nil {
		return domain.Photo{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	if err := s.store.Put(ctx, key, contentType, rc, f.Size); err != nil {
		return domain.Photo{}, err
	}
	return domain.Photo{Key: key, FileName: path.Base(f.Name), ContentType: contentType, Size: f.Size}, nil
}

func extension(name, contentType string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" && len(ext) <= 6 {
		return ext
	}
	return allowedContentTypes[contentType]
}

func (s *Service) cleanup(ctx context.Context, photos []domain.Photo) {
	for _, p := range photos {
		if p.Key == "" {
			continue
		}
		if err := s.store.Remove(ctx, p.Key); err != nil {
			s.log.WithContext(ctx).Warn("orphaned photo not removed", "key", p.Key, "error", err)
		}
	}
}

// Previews returns fresh preview URLs for keys, in order.
func (s *Service) Previews(ctx context.Context, keys []string) ([]string, error) {
	out := make([]string, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			u, err := s.store.PresignGet(gctx, key, PreviewTTL)
			if err != nil {
				return err
			}
			out[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "photo previews unavailable", err)
	}
	return out, nil
}

// Remove deletes a stored photo. Failures are logged, not returned, since the
// photo is already detached from the form.
func (s *Service) Remove(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		s.log.WithContext(ctx).Warn("photo not removed from storage", "key", key, "error", err)
	}
}

// OwnedBy reports whether key was uploaded in session sessionID. Photos
// carried over from a draft belong to the draft and are never removed here.
func OwnedBy(sessionID, key string) bool {
	return strings.HasPrefix(key, path.Join(keyPrefix, sessionID)+"/")
}
