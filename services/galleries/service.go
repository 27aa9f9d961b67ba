package galleries

import (
	"context"
	"errors"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/visibility"
)

// The GalleriesService lists, searches and manages galleries. Every read is scoped
// by the visibility of the galleries for the requester bound to the context.
type GalleriesService struct {
	Store store.Store
}

// Returns all the galleries of the authenticated user, private ones included.
func (gs *GalleriesService) ListOwned(ctx context.Context) ([]store.Gallery, error) {
	return gs.Store.Galleries.List(ctx, visibility.Owned(auth.ContextGetRequester(ctx)))
}

// Returns the public galleries of the other users.
func (gs *GalleriesService) ListPublic(ctx context.Context) ([]store.Gallery, error) {
	return gs.Store.Galleries.List(ctx, visibility.PublicExcluding(auth.ContextGetRequester(ctx)))
}

// Returns all the public galleries, for requests without an identity.
func (gs *GalleriesService) ListPublicAnonymous(ctx context.Context) ([]store.Gallery, error) {
	return gs.Store.Galleries.List(ctx, visibility.PublicAll())
}

// Fetch the gallery if it is public or owned by the requester. A private gallery
// of someone else is reported as not found, so its existence doesn't leak.
func (gs *GalleriesService) Get(ctx context.Context, galleryID int64) (store.Gallery, error) {
	gallery, err := gs.Store.Galleries.GetScoped(ctx, galleryID, visibility.VisibleTo(auth.ContextGetRequester(ctx)))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.Gallery{}, ErrGalleryNotFound
		default:
			return store.Gallery{}, err
		}
	}
	return gallery, nil
}

// Search public galleries of other users by title and description. Anonymous
// requests search among all the public galleries.
func (gs *GalleriesService) Search(ctx context.Context, pattern string) ([]store.Gallery, error) {
	return gs.Store.Galleries.Search(ctx, pattern, visibility.PublicExcluding(auth.ContextGetRequester(ctx)))
}

// Same matches of Search, as (label, id) pairs for autocompletion.
func (gs *GalleriesService) Suggestions(ctx context.Context, pattern string) ([]store.Suggestion, error) {
	return gs.Store.Galleries.Suggestions(ctx, pattern, visibility.PublicExcluding(auth.ContextGetRequester(ctx)))
}

// Create a new gallery with the provided data, owned by the authenticated user.
func (gs *GalleriesService) Insert(ctx context.Context, gallery store.Gallery) (store.Gallery, error) {
	identity := auth.MustContextGetIdentity(ctx)

	return gs.Store.Galleries.Insert(ctx, store.Gallery{
		OwnerID:     identity.UserID,
		Title:       gallery.Title,
		Description: gallery.Description,
		Private:     gallery.Private,
		Image:       gallery.Image,
		Filename:    gallery.Filename,
	})
}

// Updates an existing gallery with the data provided, the gallery must be owned
// by the authenticated user.
func (gs *GalleriesService) Update(ctx context.Context, galleryID int64, patch Patch) (store.Gallery, error) {
	gallery, err := gs.owned(ctx, galleryID)
	if err != nil {
		return store.Gallery{}, err
	}

	gallery, err = gs.Store.Galleries.Update(ctx, patch.apply(gallery))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			// The gallery is not more present, this is a concurrency issue, that is while
			// this request is being processed another request deleted the gallery.
			return store.Gallery{}, store.ErrEditConflict
		default:
			return store.Gallery{}, err
		}
	}

	return gallery, nil
}

// Delete a gallery together with its pictures and the pending download requests
// for them. The authenticated user must be the owner of the gallery.
func (gs *GalleriesService) Delete(ctx context.Context, galleryID int64) error {
	_, err := gs.owned(ctx, galleryID)
	if err != nil {
		return err
	}

	err = gs.Store.Galleries.Delete(ctx, galleryID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return ErrGalleryNotFound
		default:
			return err
		}
	}
	return nil
}

// Load a gallery for a modification. Galleries the requester cannot see are not
// found, visible galleries of someone else are forbidden.
func (gs *GalleriesService) owned(ctx context.Context, galleryID int64) (store.Gallery, error) {
	identity := auth.MustContextGetIdentity(ctx)

	gallery, err := gs.Get(ctx, galleryID)
	if err != nil {
		return store.Gallery{}, err
	}
	if gallery.OwnerID != identity.UserID {
		return store.Gallery{}, store.ErrForbidden
	}
	return gallery, nil
}
