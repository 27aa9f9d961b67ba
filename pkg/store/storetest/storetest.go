// Package storetest provides a migrated sqlite store for tests, together with a few
// fixtures to populate it.
package storetest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anBertoli/snap-share/pkg/store"
)

// A 1x1 transparent PNG encoded as data-URI.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// New returns a store backed by a fresh sqlite database living in a temporary
// directory, migrated to the latest version. The database is closed when the
// test ends.
func New(t testing.TB) store.Store {
	t.Helper()

	dsn := "sqlite://" + filepath.Join(t.TempDir(), "snapshare.db")
	require.NoError(t, store.Migrate(dsn))

	db, err := store.Open(store.Config{Dsn: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return store.New(db)
}

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// User inserts a user with a unique email. The password hash is a placeholder:
// tests needing real credentials go through the users service.
func User(t testing.TB, s store.Store) store.User {
	t.Helper()
	n := next()
	user, err := s.Users.Insert(context.Background(), store.User{
		FirstName:    "First",
		LastName:     fmt.Sprintf("Last%d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user
}

func Gallery(t testing.TB, s store.Store, ownerID int64, title, description string, private bool) store.Gallery {
	t.Helper()
	gallery, err := s.Galleries.Insert(context.Background(), store.Gallery{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Private:     private,
	})
	require.NoError(t, err)
	return gallery
}

func Picture(t testing.TB, s store.Store, galleryID int64, title string, private bool) store.Picture {
	t.Helper()
	picture, err := s.Pictures.Insert(context.Background(), store.Picture{
		GalleryID:   galleryID,
		Title:       title,
		Description: title + " description",
		Private:     private,
		Image:       PNGDataURI,
		Filename:    title + ".png",
	})
	require.NoError(t, err)
	return picture
}
