package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// The Store groups the per-entity stores sharing the same connection pool. All the
// queries are written with '?' placeholders and rebound for the driver in use, so the
// same statements run on postgres and on sqlite.
type Store struct {
	DB        *sqlx.DB
	Users     UsersStore
	Galleries GalleriesStore
	Pictures  PicturesStore
	Downloads DownloadsStore
}

func New(db *sqlx.DB) Store {
	return Store{
		DB:        db,
		Users:     UsersStore{db},
		Galleries: GalleriesStore{db},
		Pictures:  PicturesStore{db},
		Downloads: DownloadsStore{db},
	}
}

// Settings of the database connection pool.
type Config struct {
	Dsn          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

// Open the connection pool described by the config. DSNs starting with postgres:// or
// postgresql:// are served by lib/pq, sqlite://<path> DSNs by the pure Go sqlite driver.
func Open(cfg Config) (*sqlx.DB, error) {
	driver, dsn, err := driverFor(cfg.Dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxIdleTime(cfg.MaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func driverFor(dsn string) (string, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite dsn without a database path")
		}
		return "sqlite", "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
	default:
		return "", "", errors.New("unsupported database dsn, expected postgres:// or sqlite://")
	}
}

// Report whether the error is the violation of the given unique constraint. Postgres
// reports the constraint name, sqlite only the columns involved, e.g. "users.email".
func isUniqueViolation(err error, constraint, columns string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE && strings.Contains(liteErr.Error(), columns)
	}
	return false
}

// Timestamps are generated here rather than by the database, so both drivers store
// the same UTC values with the same precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

var (
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrDuplicateTitle   = errors.New("duplicate title")
	ErrDuplicateRequest = errors.New("duplicate download request")
	ErrRecordNotFound   = errors.New("record not found")
	ErrEditConflict     = errors.New("edit conflict")
	ErrForbidden        = errors.New("forbidden")
)
