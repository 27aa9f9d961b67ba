package galleries

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/validator"
)

// The ValidationMiddleware validates incoming data of each request, rejecting them if
// some pieces of needed information are missing or malformed. The middleware makes
// sure the next service in the chain will receive valid data. Methods not needing
// any validation are served by the embedded Service.
type ValidationMiddleware struct {
	Service
}

func (vm *ValidationMiddleware) Search(ctx context.Context, pattern string) ([]store.Gallery, error) {
	v := validator.New()
	v.Check(len(pattern) <= 200, "q", "must not be more than 200 bytes long")
	if !v.Ok() {
		return nil, v
	}
	return vm.Service.Search(ctx, pattern)
}

func (vm *ValidationMiddleware) Suggestions(ctx context.Context, pattern string) ([]store.Suggestion, error) {
	v := validator.New()
	v.Check(len(pattern) <= 200, "q", "must not be more than 200 bytes long")
	if !v.Ok() {
		return nil, v
	}
	return vm.Service.Suggestions(ctx, pattern)
}

func (vm *ValidationMiddleware) Insert(ctx context.Context, gallery store.Gallery) (store.Gallery, error) {
	v := validator.New()
	validator.ValidateGallery(v, gallery)
	if !v.Ok() {
		return store.Gallery{}, v
	}
	return vm.Service.Insert(ctx, gallery)
}

func (vm *ValidationMiddleware) Update(ctx context.Context, galleryID int64, patch Patch) (store.Gallery, error) {
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
	if patch.Image != nil && *patch.Image != "" {
		validator.ValidateImage(v, *patch.Image)
	}
	if !v.Ok() {
		return store.Gallery{}, v
	}
	return vm.Service.Update(ctx, galleryID, patch)
}
