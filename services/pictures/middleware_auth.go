package pictures

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
)

// The AuthMiddleware binds the identity of the caller to the context. Reads
// accept anonymous requests, modifications require a valid token.
type AuthMiddleware struct {
	Auth *auth.Authenticator
	Next Service
}

func (am *AuthMiddleware) ListForGallery(ctx context.Context, galleryID int64) ([]store.Picture, error) {
	_, err := am.Auth.OptionalUser(&ctx)
	if err != nil {
		return nil, err
	}
	return am.Next.ListForGallery(ctx, galleryID)
}

func (am *AuthMiddleware) Get(ctx context.Context, galleryID, pictureID int64) (store.Picture, error) {
	_, err := am.Auth.OptionalUser(&ctx)
	if err != nil {
		return store.Picture{}, err
	}
	return am.Next.Get(ctx, galleryID, pictureID)
}

func (am *AuthMiddleware) Insert(ctx context.Context, picture store.Picture) (store.Picture, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return store.Picture{}, err
	}
	return am.Next.Insert(ctx, picture)
}

func (am *AuthMiddleware) Update(ctx context.Context, pictureID int64, patch Patch) (store.Picture, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return store.Picture{}, err
	}
	return am.Next.Update(ctx, pictureID, patch)
}

func (am *AuthMiddleware) Delete(ctx context.Context, pictureID int64) error {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return err
	}
	return am.Next.Delete(ctx, pictureID)
}
