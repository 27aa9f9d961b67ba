package galleries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/store/storetest"
	"github.com/anBertoli/snap-share/pkg/validator"
)

type fixture struct {
	svc    Service
	store  store.Store
	tokens *auth.TokenService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := storetest.New(t)
	tokens, err := auth.NewTokenService(auth.Config{Secret: "secret", Algorithm: "HS256"})
	require.NoError(t, err)

	var svc Service
	svc = &GalleriesService{Store: s}
	svc = &ValidationMiddleware{Service: svc}
	svc = &AuthMiddleware{Auth: &auth.Authenticator{Tokens: tokens}, Next: svc}
	return fixture{svc: svc, store: s, tokens: tokens}
}

// Context of a request carrying a valid token of the user.
func (f fixture) as(t *testing.T, user store.User) context.Context {
	t.Helper()
	token, err := f.tokens.Issue(user, time.Minute)
	require.NoError(t, err)
	return auth.ContextSetToken(context.Background(), token)
}

func titles(galleries []store.Gallery) []string {
	out := []string{}
	for _, g := range galleries {
		out = append(out, g.Title)
	}
	return out
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	alice := storetest.User(t, f.store)
	bob := storetest.User(t, f.store)
	storetest.Gallery(t, f.store, alice.ID, "zeta", "", false)
	storetest.Gallery(t, f.store, alice.ID, "alpha", "", true)
	storetest.Gallery(t, f.store, bob.ID, "bob public", "", false)
	storetest.Gallery(t, f.store, bob.ID, "bob private", "", true)

	owned, err := f.svc.ListOwned(f.as(t, alice))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, titles(owned))

	public, err := f.svc.ListPublic(f.as(t, alice))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob public"}, titles(public))

	anonymous, err := f.svc.ListPublicAnonymous(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bob public", "zeta"}, titles(anonymous))

	_, err = f.svc.ListOwned(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = f.svc.ListPublic(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	alice := storetest.User(t, f.store)
	bob := storetest.User(t, f.store)
	private := storetest.Gallery(t, f.store, alice.ID, "private", "", true)
	public := storetest.Gallery(t, f.store, alice.ID, "public", "", false)

	_, err := f.svc.Get(f.as(t, alice), private.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(f.as(t, bob), private.ID)
	assert.ErrorIs(t, err, ErrGalleryNotFound)
	_, err = f.svc.Get(context.Background(), private.ID)
	assert.ErrorIs(t, err, ErrGalleryNotFound)
	_, err = f.svc.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	got, err := f.svc.Get(context.Background(), public.ID)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)

	// A bad token is never downgraded to an anonymous request.
	_, err = f.svc.Get(auth.ContextSetToken(context.Background(), "bad"), public.ID)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSearchAndSuggestions(t *testing.T) {
	f := newFixture(t)
	alice := storetest.User(t, f.store)
	bob := storetest.User(t, f.store)
	storetest.Gallery(t, f.store, alice.ID, "Alice beach", "sand", false)
	storetest.Gallery(t, f.store, bob.ID, "Bob beach", "waves", false)
	storetest.Gallery(t, f.store, bob.ID, "Bob secret beach", "", true)

	found, err := f.svc.Search(f.as(t, alice), "BEACH")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob beach"}, titles(found))

	found, err = f.svc.Search(context.Background(), "beach")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice beach", "Bob beach"}, titles(found))

	found, err = f.svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, found)

	suggestions, err := f.svc.Suggestions(f.as(t, alice), "beach")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Bob beach: waves", suggestions[0].Label)

	_, err = f.svc.Suggestions(context.Background(), "beach")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestInsertUpdateDelete(t *testing.T) {
	f := newFixture(t)
	alice := storetest.User(t, f.store)
	bob := storetest.User(t, f.store)
	ctx := f.as(t, alice)

	_, err := f.svc.Insert(ctx, store.Gallery{Title: " "})
	var v validator.Validator
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v, "title")

	gallery, err := f.svc.Insert(ctx, store.Gallery{Title: "Trip", Description: "summer", OwnerID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, gallery.OwnerID, "the owner is always the caller")

	_, err = f.svc.Insert(f.as(t, bob), store.Gallery{Title: "Trip"})
	assert.ErrorIs(t, err, store.ErrDuplicateTitle)

	private := true
	title := "Trip 2024"
	updated, err := f.svc.Update(ctx, gallery.ID, Patch{Title: &title, Private: &private})
	require.NoError(t, err)
	assert.Equal(t, "Trip 2024", updated.Title)
	assert.Equal(t, "summer", updated.Description)
	assert.True(t, updated.Private)

	empty := ""
	_, err = f.svc.Update(ctx, gallery.ID, Patch{Title: &empty})
	require.ErrorAs(t, err, &v)

	// Bob cannot see the now private gallery.
	_, err = f.svc.Update(f.as(t, bob), gallery.ID, Patch{Title: &title})
	assert.ErrorIs(t, err, ErrGalleryNotFound)
	assert.ErrorIs(t, f.svc.Delete(f.as(t, bob), gallery.ID), ErrGalleryNotFound)

	public := false
	_, err = f.svc.Update(ctx, gallery.ID, Patch{Private: &public})
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Delete(f.as(t, bob), gallery.ID), store.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, gallery.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, gallery.ID), ErrGalleryNotFound)
}
