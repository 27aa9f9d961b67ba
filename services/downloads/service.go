package downloads

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/tracing"
	"github.com/anBertoli/snap-share/pkg/validator"
	"github.com/anBertoli/snap-share/pkg/visibility"
	"github.com/anBertoli/snap-share/services/pictures"
)

// The DownloadsService implements the request/decide/deliver workflow. Requests
// are retired when decided: the store claims and deletes them in one statement,
// so a request is delivered at most once even under concurrent decisions.
type DownloadsService struct {
	Store    store.Store
	Delivery DeliveryChannel
	Logger   *zap.SugaredLogger
}

// Ask the owner of a picture to receive it. The picture must be visible to the caller
// and belong to the gallery. Asking twice returns the pending request.
func (ds *DownloadsService) Request(ctx context.Context, galleryID, pictureID int64) (store.DownloadRequest, error) {
	identity := auth.MustContextGetIdentity(ctx)

	picture, err := ds.Store.Pictures.GetScoped(ctx, pictureID, visibility.VisibleTo(visibility.User(identity.UserID)))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.DownloadRequest{}, pictures.ErrPictureNotFound
		default:
			return store.DownloadRequest{}, err
		}
	}
	if picture.GalleryID != galleryID {
		return store.DownloadRequest{}, pictures.ErrPictureNotFound
	}

	gallery, err := ds.Store.Galleries.Get(ctx, picture.GalleryID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.DownloadRequest{}, pictures.ErrPictureNotFound
		default:
			return store.DownloadRequest{}, err
		}
	}
	if gallery.OwnerID == identity.UserID {
		v := validator.New()
		v.AddError("picture_id", "cannot request your own picture")
		return store.DownloadRequest{}, v
	}

	req, err := ds.Store.Downloads.Insert(ctx, store.DownloadRequest{
		RequestorID: identity.UserID,
		OwnerID:     gallery.OwnerID,
		GalleryID:   gallery.ID,
		PictureID:   picture.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateRequest):
			return ds.Store.Downloads.GetForRequestor(ctx, identity.UserID, picture.ID)
		default:
			return store.DownloadRequest{}, err
		}
	}
	return req, nil
}

// Approve or deny a request addressed to the caller. A failed delivery doesn't
// fail the call, it is reported in the returned decision.
func (ds *DownloadsService) Decide(ctx context.Context, requestID int64, approve bool) (Decision, error) {
	identity := auth.MustContextGetIdentity(ctx)

	req, err := ds.Store.Downloads.Claim(ctx, requestID, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return Decision{}, ErrDownloadNotFound
		default:
			return Decision{}, err
		}
	}

	if !approve {
		return Decision{Request: req, State: StateDenied}, nil
	}

	err = ds.deliver(ctx, req)
	if err != nil {
		ds.Logger.Errorw("picture delivery failed",
			"id", tracing.TraceFromCtx(ctx).ID,
			"request_id", req.ID,
			"requestor_id", req.RequestorID,
			"picture_id", req.PictureID,
			"err", err,
		)
		return Decision{
			Request: req,
			State:   StateDeliveryFailed,
			Err:     &DeliveryError{RequestID: req.ID, Err: err},
		}, nil
	}

	return Decision{Request: req, State: StateDelivered}, nil
}

// List the requests waiting for a decision of the caller.
func (ds *DownloadsService) ListPending(ctx context.Context) ([]store.DownloadRequest, error) {
	identity := auth.MustContextGetIdentity(ctx)
	return ds.Store.Downloads.ListForOwner(ctx, identity.UserID)
}

// The claimed request is already gone, so everything needed by the channel
// is loaded by id. Rows deleted in the meantime make the delivery fail.
func (ds *DownloadsService) deliver(ctx context.Context, req store.DownloadRequest) error {
	recipient, err := ds.Store.Users.Get(ctx, req.RequestorID)
	if err != nil {
		return err
	}
	owner, err := ds.Store.Users.Get(ctx, req.OwnerID)
	if err != nil {
		return err
	}
	gallery, err := ds.Store.Galleries.Get(ctx, req.GalleryID)
	if err != nil {
		return err
	}
	picture, err := ds.Store.Pictures.Get(ctx, req.PictureID)
	if err != nil {
		return err
	}

	return ds.Delivery.Deliver(ctx, Delivery{
		Recipient: recipient,
		Owner:     owner,
		Gallery:   gallery,
		Picture:   picture,
	})
}
