package pictures

import (
	"context"
	"errors"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/datauri"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/visibility"
	"github.com/anBertoli/snap-share/services/galleries"
)

// The PicturesService manages the pictures of the galleries. A picture is visible
// only if both the picture and its gallery are visible to the requester.
type PicturesService struct {
	Store store.Store
}

// List the pictures of a gallery visible to the requester. The owner sees all of
// them, the others only the public pictures of a public gallery.
func (ps *PicturesService) ListForGallery(ctx context.Context, galleryID int64) ([]store.Picture, error) {
	requester := auth.ContextGetRequester(ctx)

	_, err := ps.Store.Galleries.GetScoped(ctx, galleryID, visibility.VisibleTo(requester))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return nil, galleries.ErrGalleryNotFound
		default:
			return nil, err
		}
	}

	return ps.Store.Pictures.ListForGallery(ctx, galleryID, visibility.VisibleTo(requester))
}

// Fetch a picture of the gallery, if visible to the requester.
func (ps *PicturesService) Get(ctx context.Context, galleryID, pictureID int64) (store.Picture, error) {
	picture, err := ps.Store.Pictures.GetScoped(ctx, pictureID, visibility.VisibleTo(auth.ContextGetRequester(ctx)))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.Picture{}, ErrPictureNotFound
		default:
			return store.Picture{}, err
		}
	}
	if picture.GalleryID != galleryID {
		return store.Picture{}, ErrPictureNotFound
	}
	return picture, nil
}

// Add a picture to a gallery of the authenticated user.
func (ps *PicturesService) Insert(ctx context.Context, picture store.Picture) (store.Picture, error) {
	_, err := ps.ownedGallery(ctx, picture.GalleryID)
	if err != nil {
		return store.Picture{}, err
	}

	return ps.Store.Pictures.Insert(ctx, store.Picture{
		GalleryID:   picture.GalleryID,
		Title:       picture.Title,
		Description: picture.Description,
		Private:     picture.Private,
		Image:       canonicalImage(picture.Image),
		Filename:    picture.Filename,
	})
}

// Update a picture of the authenticated user.
func (ps *PicturesService) Update(ctx context.Context, pictureID int64, patch Patch) (store.Picture, error) {
	picture, err := ps.owned(ctx, pictureID)
	if err != nil {
		return store.Picture{}, err
	}

	picture = patch.apply(picture)
	picture.Image = canonicalImage(picture.Image)

	picture, err = ps.Store.Pictures.Update(ctx, picture)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.Picture{}, store.ErrEditConflict
		default:
			return store.Picture{}, err
		}
	}
	return picture, nil
}

// Delete a picture of the authenticated user, together with the pending
// download requests for it.
func (ps *PicturesService) Delete(ctx context.Context, pictureID int64) error {
	_, err := ps.owned(ctx, pictureID)
	if err != nil {
		return err
	}

	err = ps.Store.Pictures.Delete(ctx, pictureID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return ErrPictureNotFound
		default:
			return err
		}
	}
	return nil
}

// Load a picture for a modification. Pictures the requester cannot see are
// not found, visible pictures of someone else are forbidden.
func (ps *PicturesService) owned(ctx context.Context, pictureID int64) (store.Picture, error) {
	identity := auth.MustContextGetIdentity(ctx)

	picture, err := ps.Store.Pictures.GetScoped(ctx, pictureID, visibility.VisibleTo(visibility.User(identity.UserID)))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.Picture{}, ErrPictureNotFound
		default:
			return store.Picture{}, err
		}
	}

	gallery, err := ps.Store.Galleries.Get(ctx, picture.GalleryID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.Picture{}, ErrPictureNotFound
		default:
			return store.Picture{}, err
		}
	}
	if gallery.OwnerID != identity.UserID {
		return store.Picture{}, store.ErrForbidden
	}
	return picture, nil
}

func (ps *PicturesService) ownedGallery(ctx context.Context, galleryID int64) (store.Gallery, error) {
	identity := auth.MustContextGetIdentity(ctx)

	gallery, err := ps.Store.Galleries.GetScoped(ctx, galleryID, visibility.VisibleTo(visibility.User(identity.UserID)))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.Gallery{}, galleries.ErrGalleryNotFound
		default:
			return store.Gallery{}, err
		}
	}
	if gallery.OwnerID != identity.UserID {
		return store.Gallery{}, store.ErrForbidden
	}
	return gallery, nil
}

// Images are stored with the media type sniffed from the payload, without the
// parameters of the declared one. The validation already ran upstream, an image
// that does not parse is left untouched.
func canonicalImage(image string) string {
	u, err := datauri.ParseImage(image)
	if err != nil {
		return image
	}
	return datauri.Encode(u.Data)
}
