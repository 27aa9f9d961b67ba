package main

import (
	"net/http"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/services/pictures"
)

// List the pictures of a gallery visible to the caller.
func (app *application) listPicturesHandler(w http.ResponseWriter, r *http.Request) {
	galleryID, err := readUrlIntParam(r, "gallery-id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	list, err := app.pictures.ListForGallery(r.Context(), galleryID)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"pictures": list}, nil)
}

func (app *application) getPictureHandler(w http.ResponseWriter, r *http.Request) {
	galleryID, err := readUrlIntParam(r, "gallery-id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	pictureID, err := readUrlIntParam(r, "picture-id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	picture, err := app.pictures.Get(r.Context(), galleryID, pictureID)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"picture": picture}, nil)
}

// Add a picture to a gallery of the caller. The image is a base64 data-URI.
func (app *application) createPictureHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		GalleryID   int64  `json:"gallery_id"`
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

	picture, err := app.pictures.Insert(r.Context(), store.Picture{
		GalleryID:   input.GalleryID,
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

	app.sendJSON(w, r, http.StatusCreated, env{"picture": picture}, nil)
}

func (app *application) updatePictureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readUrlIntParam(r, "picture-id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	var patch pictures.Patch
	err = readJSON(w, r, &patch)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	picture, err := app.pictures.Update(r.Context(), id, patch)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"picture": picture}, nil)
}

// Delete a picture, its pending download requests are dropped as well.
func (app *application) deletePictureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readUrlIntParam(r, "picture-id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	err = app.pictures.Delete(r.Context(), id)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"deleted_picture_id": id}, nil)
}
