package pictures

import (
	"context"
	"fmt"

	"github.com/anBertoli/snap-share/pkg/store"
)

// Public interface for the pictures service. The service is exposed
// via transport-specific adapters, e.g. the JSON-HTTP api.
type Service interface {
	ListForGallery(ctx context.Context, galleryID int64) ([]store.Picture, error)
	Get(ctx context.Context, galleryID, pictureID int64) (store.Picture, error)
	Insert(ctx context.Context, picture store.Picture) (store.Picture, error)
	Update(ctx context.Context, pictureID int64, patch Patch) (store.Picture, error)
	Delete(ctx context.Context, pictureID int64) error
}

// Patch holds the fields of a picture to update, nil fields are left untouched.
type Patch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Private     *bool   `json:"private"`
	Image       *string `json:"image"`
	Filename    *string `json:"filename"`
}

func (p Patch) apply(picture store.Picture) store.Picture {
	if p.Title != nil {
		picture.Title = *p.Title
	}
	if p.Description != nil {
		picture.Description = *p.Description
	}
	if p.Private != nil {
		picture.Private = *p.Private
	}
	if p.Image != nil {
		picture.Image = *p.Image
	}
	if p.Filename != nil {
		picture.Filename = *p.Filename
	}
	return picture
}

var ErrPictureNotFound = fmt.Errorf("picture %w", store.ErrRecordNotFound)

// This checks makes sure that all service implementation remain
// valid while we refactor our code.
var _ Service = &PicturesService{}
var _ Service = &AuthMiddleware{}
var _ Service = &ValidationMiddleware{}
