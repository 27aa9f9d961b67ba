package main

import (
	"net/http"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/services/galleries"
)

// List galleries owned by the authenticated user, sorted by title.
func (app *application) listOwnedGalleriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.galleries.ListOwned(r.Context())
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"galleries": list}, nil)
}

// List public galleries of the other users.
func (app *application) listPublicGalleriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.galleries.ListPublic(r.Context())
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"galleries": list}, nil)
}

// List all the public galleries, no authentication involved.
func (app *application) listAnonymousGalleriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.galleries.ListPublicAnonymous(r.Context())
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"galleries": list}, nil)
}

// Search the galleries with the pattern in the 'q' query parameter. Without a token
// every public gallery is searched.
func (app *application) searchGalleriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.galleries.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"galleries": list}, nil)
}

// Autocomplete suggestions for the pattern in the JSON body.
func (app *application) suggestionsHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Q string `json:"q"`
	}

	err := readJSON(w, r, &input)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	suggestions, err := app.galleries.Suggestions(r.Context(), input.Q)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"suggestions": suggestions}, nil)
}

// Get a gallery owned by the caller or public.
func (app *application) getGalleryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readUrlIntParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	gallery, err := app.galleries.Get(r.Context(), id)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"gallery": gallery}, nil)
}

// Create a new gallery reading the data from the JSON-formatted body.
func (app *application) createGalleryHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Private     bool   `json:"private"`
		Image       string `json:"image"`
		Filename    string `json:"filename"`
	}

	err := readJSON(w, r, &input)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	gallery, err := app.galleries.Insert(r.Context(), store.Gallery{
		Title:       input.Title,
		Description: input.Description,
		Private:     input.Private,
		Image:       input.Image,
		Filename:    input.Filename,
	})
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusCreated, env{"gallery": gallery}, nil)
}

// Update an existing gallery. Only the fields present in the body are changed.
func (app *application) updateGalleryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readUrlIntParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	var patch galleries.Patch
	err = readJSON(w, r, &patch)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	gallery, err := app.galleries.Update(r.Context(), id, patch)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"gallery": gallery}, nil)
}

// Delete an existing gallery with its pictures.
func (app *application) deleteGalleryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readUrlIntParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	err = app.galleries.Delete(r.Context(), id)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"deleted_gallery_id": id}, nil)
}
