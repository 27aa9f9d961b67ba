package galleries

import (
	"context"
	"fmt"

	"github.com/anBertoli/snap-share/pkg/store"
)

// Public interface for the gallery service. The service is exposed
// via transport-specific adapters, e.g. the JSON-HTTP api.
type Service interface {
	ListOwned(ctx context.Context) ([]store.Gallery, error)
	ListPublic(ctx context.Context) ([]store.Gallery, error)
	ListPublicAnonymous(ctx context.Context) ([]store.Gallery, error)
	Get(ctx context.Context, galleryID int64) (store.Gallery, error)
	Search(ctx context.Context, pattern string) ([]store.Gallery, error)
	Suggestions(ctx context.Context, pattern string) ([]store.Suggestion, error)
	Insert(ctx context.Context, gallery store.Gallery) (store.Gallery, error)
	Update(ctx context.Context, galleryID int64, patch Patch) (store.Gallery, error)
	Delete(ctx context.Context, galleryID int64) error
}

// Patch holds the fields of a gallery to update, nil fields are left untouched.
type Patch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Private     *bool   `json:"private"`
	Image       *string `json:"image"`
	Filename    *string `json:"filename"`
}

func (p Patch) apply(gallery store.Gallery) store.Gallery {
	if p.Title != nil {
		gallery.Title = *p.Title
	}
	if p.Description != nil {
		gallery.Description = *p.Description
	}
	if p.Private != nil {
		gallery.Private = *p.Private
	}
	if p.Image != nil {
		gallery.Image = *p.Image
	}
	if p.Filename != nil {
		gallery.Filename = *p.Filename
	}
	return gallery
}

var ErrGalleryNotFound = fmt.Errorf("gallery %w", store.ErrRecordNotFound)

// This checks makes sure that all service implementation remain
// valid while we refactor our code.
var _ Service = &GalleriesService{}
var _ Service = &AuthMiddleware{}
var _ Service = &ValidationMiddleware{}
