package galleries

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
)

// The AuthMiddleware binds the identity of the caller to the context. Listings of
// owned galleries, suggestions and modifications require a valid token, the other
// reads fall back to the anonymous requester when no token is provided.
type AuthMiddleware struct {
	Auth *auth.Authenticator
	Next Service
}

func (am *AuthMiddleware) ListOwned(ctx context.Context) ([]store.Gallery, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return nil, err
	}
	return am.Next.ListOwned(ctx)
}

func (am *AuthMiddleware) ListPublic(ctx context.Context) ([]store.Gallery, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return nil, err
	}
	return am.Next.ListPublic(ctx)
}

func (am *AuthMiddleware) ListPublicAnonymous(ctx context.Context) ([]store.Gallery, error) {
	return am.Next.ListPublicAnonymous(ctx)
}

func (am *AuthMiddleware) Get(ctx context.Context, galleryID int64) (store.Gallery, error) {
	_, err := am.Auth.OptionalUser(&ctx)
	if err != nil {
		return store.Gallery{}, err
	}
	return am.Next.Get(ctx, galleryID)
}

func (am *AuthMiddleware) Search(ctx context.Context, pattern string) ([]store.Gallery, error) {
	_, err := am.Auth.OptionalUser(&ctx)
	if err != nil {
		return nil, err
	}
	return am.Next.Search(ctx, pattern)
}

func (am *AuthMiddleware) Suggestions(ctx context.Context, pattern string) ([]store.Suggestion, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return nil, err
	}
	return am.Next.Suggestions(ctx, pattern)
}

func (am *AuthMiddleware) Insert(ctx context.Context, gallery store.Gallery) (store.Gallery, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return store.Gallery{}, err
	}
	return am.Next.Insert(ctx, gallery)
}

func (am *AuthMiddleware) Update(ctx context.Context, galleryID int64, patch Patch) (store.Gallery, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return store.Gallery{}, err
	}
	return am.Next.Update(ctx, galleryID, patch)
}

func (am *AuthMiddleware) Delete(ctx context.Context, galleryID int64) error {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return err
	}
	return am.Next.Delete(ctx, galleryID)
}
