package downloads

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
)

// Every operation of the workflow needs an authenticated user.
type AuthMiddleware struct {
	Auth *auth.Authenticator
	Next Service
}

func (am *AuthMiddleware) Request(ctx context.Context, galleryID, pictureID int64) (store.DownloadRequest, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return store.DownloadRequest{}, err
	}
	return am.Next.Request(ctx, galleryID, pictureID)
}

func (am *AuthMiddleware) Decide(ctx context.Context, requestID int64, approve bool) (Decision, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return Decision{}, err
	}
	return am.Next.Decide(ctx, requestID, approve)
}

func (am *AuthMiddleware) ListPending(ctx context.Context) ([]store.DownloadRequest, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return nil, err
	}
	return am.Next.ListPending(ctx)
}
