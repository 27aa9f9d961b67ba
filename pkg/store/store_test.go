package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/store/storetest"
	"github.com/anBertoli/snap-share/pkg/visibility"
)

func titles(galleries []store.Gallery) []string {
	out := []string{}
	for _, g := range galleries {
		out = append(out, g.Title)
	}
	return out
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	user, err := s.Users.Insert(ctx, store.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = s.Users.Insert(ctx, store.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	got, err := s.Users.GetForEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.False(t, got.ResetTokenExpiry.Valid)

	_, err = s.Users.GetForEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestUsersResetPasswordIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	user := storetest.User(t, s)

	plain, hash, err := store.GenerateToken()
	require.NoError(t, err)
	assert.Len(t, plain, 32)
	assert.Equal(t, store.HashToken(plain), hash)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, s.Users.SetResetToken(ctx, user.ID, hash, expiry))

	got, err := s.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, hash, got.ResetTokenHash)
	require.True(t, got.ResetTokenExpiry.Valid)
	assert.WithinDuration(t, expiry, got.ResetTokenExpiry.Time, time.Second)

	require.NoError(t, s.Users.ResetPassword(ctx, user.ID, hash, "new-hash"))
	assert.ErrorIs(t, s.Users.ResetPassword(ctx, user.ID, hash, "other-hash"), store.ErrEditConflict)

	got, err = s.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Empty(t, got.ResetTokenHash)
	assert.False(t, got.ResetTokenExpiry.Valid)

	assert.ErrorIs(t, s.Users.SetResetToken(ctx, 9999, hash, expiry), store.ErrRecordNotFound)
}

func TestUsersDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	owner := storetest.User(t, s)
	other := storetest.User(t, s)

	gallery := storetest.Gallery(t, s, owner.ID, "Cascade", "", false)
	picture := storetest.Picture(t, s, gallery.ID, "pic", false)
	_, err := s.Downloads.Insert(ctx, store.DownloadRequest{
		RequestorID: other.ID, OwnerID: owner.ID, GalleryID: gallery.ID, PictureID: picture.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.Users.Delete(ctx, owner.ID))
	assert.ErrorIs(t, s.Users.Delete(ctx, owner.ID), store.ErrRecordNotFound)

	_, err = s.Galleries.Get(ctx, gallery.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = s.Pictures.Get(ctx, picture.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = s.Downloads.GetForRequestor(ctx, other.ID, picture.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestGalleriesListings(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	alice := storetest.User(t, s)
	bob := storetest.User(t, s)

	storetest.Gallery(t, s, alice.ID, "b-alice-public", "", false)
	storetest.Gallery(t, s, alice.ID, "a-alice-private", "", true)
	storetest.Gallery(t, s, bob.ID, "c-bob-public", "", false)
	storetest.Gallery(t, s, bob.ID, "d-bob-private", "", true)

	owned, err := s.Galleries.List(ctx, visibility.Owned(visibility.User(alice.ID)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-alice-private", "b-alice-public"}, titles(owned))

	public, err := s.Galleries.List(ctx, visibility.PublicExcluding(visibility.User(alice.ID)))
	require.NoError(t, err)
	assert.Equal(t, []string{"c-bob-public"}, titles(public))

	anonymous, err := s.Galleries.List(ctx, visibility.PublicExcluding(visibility.Anonymous))
	require.NoError(t, err)
	assert.Equal(t, []string{"b-alice-public", "c-bob-public"}, titles(anonymous))

	none, err := s.Galleries.List(ctx, visibility.Owned(visibility.User(9999)))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGalleriesGetScoped(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	alice := storetest.User(t, s)
	bob := storetest.User(t, s)
	private := storetest.Gallery(t, s, alice.ID, "hidden", "", true)
	public := storetest.Gallery(t, s, alice.ID, "shown", "", false)

	got, err := s.Galleries.GetScoped(ctx, private.ID, visibility.VisibleTo(visibility.User(alice.ID)))
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)
	assert.True(t, got.Private)

	_, err = s.Galleries.GetScoped(ctx, private.ID, visibility.VisibleTo(visibility.User(bob.ID)))
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = s.Galleries.GetScoped(ctx, private.ID, visibility.VisibleTo(visibility.Anonymous))
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	_, err = s.Galleries.GetScoped(ctx, public.ID, visibility.VisibleTo(visibility.Anonymous))
	assert.NoError(t, err)
}

func TestGalleriesSearch(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	alice := storetest.User(t, s)
	bob := storetest.User(t, s)

	storetest.Gallery(t, s, bob.ID, "Sea", "Blue waves", false)
	storetest.Gallery(t, s, bob.ID, "Mountains", "snowy SEA of peaks", false)
	storetest.Gallery(t, s, bob.ID, "Seaside private", "", true)
	storetest.Gallery(t, s, alice.ID, "Alice sea", "", false)
	storetest.Gallery(t, s, bob.ID, "100% real", "", false)
	storetest.Gallery(t, s, bob.ID, "1000 real", "", false)
	storetest.Gallery(t, s, bob.ID, "a_c", "", false)
	storetest.Gallery(t, s, bob.ID, "abc", "", false)
	storetest.Gallery(t, s, bob.ID, "Église", "Été à Paris", false)

	aliceScope := visibility.PublicExcluding(visibility.User(alice.ID))
	anonScope := visibility.PublicExcluding(visibility.Anonymous)

	tests := []struct {
		name    string
		pattern string
		filter  visibility.Filter
		want    []string
	}{
		{"title or description, excluding own", "sea", aliceScope, []string{"Mountains", "Sea"}},
		{"anonymous sees everyone public", "SEA", anonScope, []string{"Alice sea", "Mountains", "Sea"}},
		{"compound label exact match", "SEA: blue WAVES", aliceScope, []string{"Sea"}},
		{"compound label partial is no match", "sea: blue", aliceScope, []string{}},
		{"percent is literal", "100%", anonScope, []string{"100% real"}},
		{"underscore is literal", "a_c", anonScope, []string{"a_c"}},
		{"empty pattern", "", anonScope, []string{}},
		{"blank pattern", "   ", anonScope, []string{}},
		{"private never matches", "seaside", aliceScope, []string{}},
		{"non ascii title", "Église", anonScope, []string{"Église"}},
		{"non ascii description", "Été", anonScope, []string{"Église"}},
		{"non ascii compound label", "Église: Été à PARIS", anonScope, []string{"Église"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Galleries.Search(ctx, tt.pattern, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))

			suggestions, err := s.Galleries.Suggestions(ctx, tt.pattern, tt.filter)
			require.NoError(t, err)
			require.Len(t, suggestions, len(got))
			for i, g := range got {
				assert.Equal(t, g.ID, suggestions[i].ID)
				assert.Equal(t, g.Title+": "+g.Description, suggestions[i].Label)
			}
		})
	}
}

func TestGalleriesInsertUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	owner := storetest.User(t, s)

	first := storetest.Gallery(t, s, owner.ID, "first", "", false)
	second := storetest.Gallery(t, s, owner.ID, "second", "", false)

	_, err := s.Galleries.Insert(ctx, store.Gallery{OwnerID: owner.ID, Title: "first"})
	assert.ErrorIs(t, err, store.ErrDuplicateTitle)

	second.Title = "first"
	_, err = s.Galleries.Update(ctx, second)
	assert.ErrorIs(t, err, store.ErrDuplicateTitle)

	first.Description = "updated"
	first.Private = true
	updated, err := s.Galleries.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)
	assert.True(t, updated.Private)
	assert.Equal(t, owner.ID, updated.OwnerID)

	_, err = s.Galleries.Update(ctx, store.Gallery{ID: 9999, Title: "ghost"})
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	picture := storetest.Picture(t, s, first.ID, "p", false)
	require.NoError(t, s.Galleries.Delete(ctx, first.ID))
	_, err = s.Pictures.Get(ctx, picture.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	assert.ErrorIs(t, s.Galleries.Delete(ctx, first.ID), store.ErrRecordNotFound)
}

func TestPicturesEffectivePrivacy(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	alice := storetest.User(t, s)
	bob := storetest.User(t, s)

	open := storetest.Gallery(t, s, alice.ID, "open", "", false)
	closed := storetest.Gallery(t, s, alice.ID, "closed", "", true)

	publicInOpen := storetest.Picture(t, s, open.ID, "public-in-open", false)
	privateInOpen := storetest.Picture(t, s, open.ID, "private-in-open", true)
	publicInClosed := storetest.Picture(t, s, closed.ID, "public-in-closed", false)

	bobScope := visibility.VisibleTo(visibility.User(bob.ID))
	aliceScope := visibility.VisibleTo(visibility.User(alice.ID))

	_, err := s.Pictures.GetScoped(ctx, publicInOpen.ID, bobScope)
	assert.NoError(t, err)
	_, err = s.Pictures.GetScoped(ctx, privateInOpen.ID, bobScope)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = s.Pictures.GetScoped(ctx, publicInClosed.ID, bobScope)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = s.Pictures.GetScoped(ctx, publicInClosed.ID, aliceScope)
	assert.NoError(t, err)

	list, err := s.Pictures.ListForGallery(ctx, open.ID, bobScope)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, publicInOpen.ID, list[0].ID)

	list, err = s.Pictures.ListForGallery(ctx, open.ID, aliceScope)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, publicInOpen.ID, list[0].ID)
	assert.Equal(t, privateInOpen.ID, list[1].ID)

	list, err = s.Pictures.ListForGallery(ctx, closed.ID, visibility.VisibleTo(visibility.Anonymous))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPicturesDeleteRemovesDownloadRequests(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	owner := storetest.User(t, s)
	requestor := storetest.User(t, s)
	gallery := storetest.Gallery(t, s, owner.ID, "g", "", false)
	picture := storetest.Picture(t, s, gallery.ID, "p", false)
	kept := storetest.Picture(t, s, gallery.ID, "kept", false)

	for _, p := range []store.Picture{picture, kept} {
		_, err := s.Downloads.Insert(ctx, store.DownloadRequest{
			RequestorID: requestor.ID, OwnerID: owner.ID, GalleryID: gallery.ID, PictureID: p.ID,
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.Pictures.Delete(ctx, picture.ID))
	assert.ErrorIs(t, s.Pictures.Delete(ctx, picture.ID), store.ErrRecordNotFound)

	pending, err := s.Downloads.ListForOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, kept.ID, pending[0].PictureID)
}

func TestDownloadsClaim(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	owner := storetest.User(t, s)
	requestor := storetest.User(t, s)
	gallery := storetest.Gallery(t, s, owner.ID, "g", "", false)
	picture := storetest.Picture(t, s, gallery.ID, "p", false)

	req, err := s.Downloads.Insert(ctx, store.DownloadRequest{
		RequestorID: requestor.ID, OwnerID: owner.ID, GalleryID: gallery.ID, PictureID: picture.ID,
	})
	require.NoError(t, err)

	_, err = s.Downloads.Insert(ctx, req)
	assert.ErrorIs(t, err, store.ErrDuplicateRequest)

	existing, err := s.Downloads.GetForRequestor(ctx, requestor.ID, picture.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, existing.ID)

	_, err = s.Downloads.Claim(ctx, req.ID, requestor.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	claimed, err := s.Downloads.Claim(ctx, req.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, claimed.ID)
	assert.Equal(t, picture.ID, claimed.PictureID)
	assert.Equal(t, requestor.ID, claimed.RequestorID)

	_, err = s.Downloads.Claim(ctx, req.ID, owner.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestDownloadsConcurrentClaimsSucceedOnce(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	owner := storetest.User(t, s)
	requestor := storetest.User(t, s)
	gallery := storetest.Gallery(t, s, owner.ID, "g", "", false)
	picture := storetest.Picture(t, s, gallery.ID, "p", false)

	req, err := s.Downloads.Insert(ctx, store.DownloadRequest{
		RequestorID: requestor.ID, OwnerID: owner.ID, GalleryID: gallery.ID, PictureID: picture.ID,
	})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Downloads.Claim(ctx, req.ID, owner.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, store.ErrRecordNotFound):
				notFound++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, notFound)
}
