package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anBertoli/snap-share/pkg/visibility"
)

type Gallery struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Private     bool      `json:"private" db:"private"`
	Image       string    `json:"image" db:"image"`
	Filename    string    `json:"filename" db:"filename"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// A search suggestion, the label is the "<title>: <description>" form of the gallery.
type Suggestion struct {
	Label string `json:"label" db:"label"`
	ID    int64  `json:"id" db:"id"`
}

const galleryColumns = `id, owner_id, title, description, private, image, filename, created_at`

var galleryScope = visibility.Columns{
	Owner:   "galleries.owner_id",
	Private: "galleries.private",
}

// The store abstraction used to manipulate galleries into the database.
// It holds a DB connection pool.
type GalleriesStore struct {
	DB *sqlx.DB
}

// Retrieve a specific gallery from the database, regardless of its visibility.
func (gs *GalleriesStore) Get(ctx context.Context, id int64) (Gallery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var gallery Gallery
	err := gs.DB.GetContext(ctx, &gallery, gs.DB.Rebind(`SELECT `+galleryColumns+` FROM galleries WHERE id = ?`), id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Gallery{}, ErrRecordNotFound
		default:
			return Gallery{}, err
		}
	}

	return gallery, nil
}

// Retrieve a gallery only if the filter allows it. A gallery hidden by the
// filter is reported exactly as a missing one.
func (gs *GalleriesStore) GetScoped(ctx context.Context, id int64, filter visibility.Filter) (Gallery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	scope, args := filter.SQL(galleryScope)
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE galleries.id = ? AND ` + scope

	var gallery Gallery
	err := gs.DB.GetContext(ctx, &gallery, gs.DB.Rebind(query), append([]interface{}{id}, args...)...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Gallery{}, ErrRecordNotFound
		default:
			return Gallery{}, err
		}
	}

	return gallery, nil
}

// Obtain the galleries allowed by the filter, sorted by title and then by id.
func (gs *GalleriesStore) List(ctx context.Context, filter visibility.Filter) ([]Gallery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	scope, args := filter.SQL(galleryScope)
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE ` + scope + ` ORDER BY galleries.title ASC, galleries.id ASC`

	galleries := []Gallery{}
	err := gs.DB.SelectContext(ctx, &galleries, gs.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return galleries, nil
}

// Obtain the galleries allowed by the filter matching the pattern. A gallery matches
// when the pattern is a case-insensitive substring of its title or of its description,
// or when it equals, ignoring case, the "<title>: <description>" label. LIKE wildcards
// in the pattern are matched literally. An empty pattern matches nothing.
func (gs *GalleriesStore) Search(ctx context.Context, pattern string, filter visibility.Filter) ([]Gallery, error) {
	galleries := []Gallery{}
	where, args, ok := searchClause(pattern, filter)
	if !ok {
		return galleries, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE ` + where + ` ORDER BY galleries.title ASC, galleries.id ASC`
	err := gs.DB.SelectContext(ctx, &galleries, gs.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return galleries, nil
}

// Same match set and ordering of Search, projected to (label, id) pairs.
func (gs *GalleriesStore) Suggestions(ctx context.Context, pattern string, filter visibility.Filter) ([]Suggestion, error) {
	suggestions := []Suggestion{}
	where, args, ok := searchClause(pattern, filter)
	if !ok {
		return suggestions, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT galleries.title || ': ' || galleries.description AS label, galleries.id
		FROM galleries WHERE ` + where + ` ORDER BY galleries.title ASC, galleries.id ASC`
	err := gs.DB.SelectContext(ctx, &suggestions, gs.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return suggestions, nil
}

func searchClause(pattern string, filter visibility.Filter) (string, []interface{}, bool) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "", nil, false
	}

	// Both sides are folded by the database LOWER, so the pattern and the columns
	// always agree on the case mapping (ASCII only on sqlite).
	like := "%" + escapeLike(pattern) + "%"
	scope, args := filter.SQL(galleryScope)
	where := scope + ` AND (
		LOWER(galleries.title) LIKE LOWER(?) ESCAPE '\' OR
		LOWER(galleries.description) LIKE LOWER(?) ESCAPE '\' OR
		LOWER(galleries.title || ': ' || galleries.description) = LOWER(?))`

	return where, append(args, like, like, pattern), true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Inserts a new gallery. The id and the creation time are set by the store.
func (gs *GalleriesStore) Insert(ctx context.Context, gallery Gallery) (Gallery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	gallery.CreatedAt = now()
	err := gs.DB.GetContext(ctx, &gallery.ID, gs.DB.Rebind(`
		INSERT INTO galleries (owner_id, title, description, private, image, filename, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), gallery.OwnerID, gallery.Title, gallery.Description, gallery.Private, gallery.Image, gallery.Filename, gallery.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "galleries_title_key", "galleries.title"):
			return Gallery{}, ErrDuplicateTitle
		default:
			return Gallery{}, err
		}
	}

	return gallery, nil
}

// Update the mutable fields of an existing gallery. The owner never changes.
func (gs *GalleriesStore) Update(ctx context.Context, gallery Gallery) (Gallery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := gs.DB.GetContext(ctx, &gallery, gs.DB.Rebind(`
		UPDATE galleries SET title = ?, description = ?, private = ?, image = ?, filename = ?
		WHERE id = ?
		RETURNING `+galleryColumns,
	), gallery.Title, gallery.Description, gallery.Private, gallery.Image, gallery.Filename, gallery.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Gallery{}, ErrRecordNotFound
		case isUniqueViolation(err, "galleries_title_key", "galleries.title"):
			return Gallery{}, ErrDuplicateTitle
		default:
			return Gallery{}, err
		}
	}

	return gallery, nil
}

// Delete the specified gallery. Pictures and pending download
// requests are removed by the foreign keys cascade.
func (gs *GalleriesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := gs.DB.ExecContext(ctx, gs.DB.Rebind(`DELETE FROM galleries WHERE id = ?`), id)
	if err != nil {
		return err
	}
	// Check that the gallery is effectively deleted.
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
