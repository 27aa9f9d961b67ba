package pictures

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/validator"
)

// The ValidationMiddleware validates incoming data of each request, rejecting them if
// some pieces of needed information are missing or malformed. The payload of a picture
// must be a data-URI of an image.
type ValidationMiddleware struct {
	Service
}

func (vm *ValidationMiddleware) Insert(ctx context.Context, picture store.Picture) (store.Picture, error) {
	v := validator.New()
	v.Check(picture.GalleryID > 0, "gallery_id", "must be provided")
	validator.ValidatePicture(v, picture)
	if !v.Ok() {
		return store.Picture{}, v
	}
	return vm.Service.Insert(ctx, picture)
}

func (vm *ValidationMiddleware) Update(ctx context.Context, pictureID int64, patch Patch) (store.Picture, error) {
	v := validator.New()
	if patch.Title != nil {
		validator.ValidateTitle(v, *patch.Title)
	}
	if patch.Description != nil {
		validator.ValidateDescription(v, *patch.Description)
	}
	if patch.Filename != nil {
		validator.ValidateFilename(v, *patch.Filename)
	}
	if patch.Image != nil {
		validator.ValidateImage(v, *patch.Image)
	}
	if !v.Ok() {
		return store.Picture{}, v
	}
	return vm.Service.Update(ctx, pictureID, patch)
}
