package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// A pending request of a user to receive a picture. The row exists only until the
// owner decides it, no terminal state is retained.
type DownloadRequest struct {
	ID          int64     `json:"id" db:"id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	RequestorID int64     `json:"requestor_id" db:"requestor_id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	GalleryID   int64     `json:"gallery_id" db:"gallery_id"`
	PictureID   int64     `json:"picture_id" db:"picture_id"`
}

const downloadColumns = `id, created_at, requestor_id, owner_id, gallery_id, picture_id`

type DownloadsStore struct {
	DB *sqlx.DB
}

// Persist a new pending request. A second pending request of the same
// user for the same picture fails with ErrDuplicateRequest.
func (ds *DownloadsStore) Insert(ctx context.Context, req DownloadRequest) (DownloadRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req.CreatedAt = now()
	err := ds.DB.GetContext(ctx, &req.ID, ds.DB.Rebind(`
		INSERT INTO download_requests (created_at, requestor_id, owner_id, gallery_id, picture_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), req.CreatedAt, req.RequestorID, req.OwnerID, req.GalleryID, req.PictureID)
	if err != nil {
		switch {
		case isUniqueViolation(err, "download_requests_requestor_picture_key", "download_requests.requestor_id"):
			return DownloadRequest{}, ErrDuplicateRequest
		default:
			return DownloadRequest{}, err
		}
	}

	return req, nil
}

// Retrieve the pending request of the user for the picture.
func (ds *DownloadsStore) GetForRequestor(ctx context.Context, requestorID, pictureID int64) (DownloadRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var req DownloadRequest
	err := ds.DB.GetContext(ctx, &req, ds.DB.Rebind(`
		SELECT `+downloadColumns+` FROM download_requests WHERE requestor_id = ? AND picture_id = ?
	`), requestorID, pictureID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return DownloadRequest{}, ErrRecordNotFound
		default:
			return DownloadRequest{}, err
		}
	}

	return req, nil
}

// List the pending requests addressed to the owner, sorted by id.
func (ds *DownloadsStore) ListForOwner(ctx context.Context, ownerID int64) ([]DownloadRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	reqs := []DownloadRequest{}
	err := ds.DB.SelectContext(ctx, &reqs, ds.DB.Rebind(`
		SELECT `+downloadColumns+` FROM download_requests WHERE owner_id = ? ORDER BY id ASC
	`), ownerID)
	if err != nil {
		return nil, err
	}

	return reqs, nil
}

// Claim the request for a decision, deleting it in the same statement only if it is
// addressed to the owner. Of many concurrent claims of the same request exactly one
// gets the row back, the others get ErrRecordNotFound.
func (ds *DownloadsStore) Claim(ctx context.Context, id, ownerID int64) (DownloadRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var req DownloadRequest
	err := ds.DB.GetContext(ctx, &req, ds.DB.Rebind(`
		DELETE FROM download_requests WHERE id = ? AND owner_id = ?
		RETURNING `+downloadColumns,
	), id, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return DownloadRequest{}, ErrRecordNotFound
		default:
			return DownloadRequest{}, err
		}
	}

	return req, nil
}
