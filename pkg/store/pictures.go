package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anBertoli/snap-share/pkg/visibility"
)

// Picture holds the image payload as a data-URI, the payload is never stored on disk.
type Picture struct {
	ID          int64     `json:"id" db:"id"`
	GalleryID   int64     `json:"gallery_id" db:"gallery_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Private     bool      `json:"private" db:"private"`
	Image       string    `json:"image" db:"image"`
	Filename    string    `json:"filename" db:"filename"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	pictureColumns = `id, gallery_id, title, description, private, image, filename, created_at`

	pictureJoinColumns = `pictures.id, pictures.gallery_id, pictures.title, pictures.description,
	pictures.private, pictures.image, pictures.filename, pictures.created_at`
)

// Pictures are scoped with the owner of their gallery and their
// effective privacy, which includes the gallery flag.
var pictureScope = visibility.Columns{
	Owner:   "galleries.owner_id",
	Private: "(pictures.private OR galleries.private)",
}

// The store abstraction used to manipulate pictures into the database.
// It holds a DB connection pool.
type PicturesStore struct {
	DB *sqlx.DB
}

// Retrieve a specific picture, regardless of its visibility.
func (ps *PicturesStore) Get(ctx context.Context, id int64) (Picture, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var picture Picture
	err := ps.DB.GetContext(ctx, &picture, ps.DB.Rebind(`SELECT `+pictureColumns+` FROM pictures WHERE id = ?`), id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Picture{}, ErrRecordNotFound
		default:
			return Picture{}, err
		}
	}

	return picture, nil
}

// Retrieve a picture only if the filter allows it, considering its effective privacy.
func (ps *PicturesStore) GetScoped(ctx context.Context, id int64, filter visibility.Filter) (Picture, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	scope, args := filter.SQL(pictureScope)
	query := `SELECT ` + pictureJoinColumns + ` FROM pictures
		INNER JOIN galleries ON galleries.id = pictures.gallery_id
		WHERE pictures.id = ? AND ` + scope

	var picture Picture
	err := ps.DB.GetContext(ctx, &picture, ps.DB.Rebind(query), append([]interface{}{id}, args...)...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Picture{}, ErrRecordNotFound
		default:
			return Picture{}, err
		}
	}

	return picture, nil
}

// List the pictures of a gallery allowed by the filter, sorted by id.
func (ps *PicturesStore) ListForGallery(ctx context.Context, galleryID int64, filter visibility.Filter) ([]Picture, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	scope, args := filter.SQL(pictureScope)
	query := `SELECT ` + pictureJoinColumns + ` FROM pictures
		INNER JOIN galleries ON galleries.id = pictures.gallery_id
		WHERE pictures.gallery_id = ? AND ` + scope + `
		ORDER BY pictures.id ASC`

	pictures := []Picture{}
	err := ps.DB.SelectContext(ctx, &pictures, ps.DB.Rebind(query), append([]interface{}{galleryID}, args...)...)
	if err != nil {
		return nil, err
	}

	return pictures, nil
}

// Insert a new picture. The id and the creation time are set by the store.
func (ps *PicturesStore) Insert(ctx context.Context, picture Picture) (Picture, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	picture.CreatedAt = now()
	err := ps.DB.GetContext(ctx, &picture.ID, ps.DB.Rebind(`
		INSERT INTO pictures (gallery_id, title, description, private, image, filename, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), picture.GalleryID, picture.Title, picture.Description, picture.Private, picture.Image, picture.Filename, picture.CreatedAt)
	if err != nil {
		return Picture{}, err
	}

	return picture, nil
}

// Update the mutable fields of a picture. The gallery of a picture never changes.
func (ps *PicturesStore) Update(ctx context.Context, picture Picture) (Picture, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := ps.DB.GetContext(ctx, &picture, ps.DB.Rebind(`
		UPDATE pictures SET title = ?, description = ?, private = ?, image = ?, filename = ?
		WHERE id = ?
		RETURNING `+pictureColumns,
	), picture.Title, picture.Description, picture.Private, picture.Image, picture.Filename, picture.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Picture{}, ErrRecordNotFound
		default:
			return Picture{}, err
		}
	}

	return picture, nil
}

// Delete the picture together with the download requests referencing it, in the
// same transaction. Requests for a missing picture could never be resolved.
func (ps *PicturesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := ps.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM download_requests WHERE picture_id = ?`), id)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM pictures WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}

	return tx.Commit()
}
