package main

import (
	"net/http"

	"github.com/anBertoli/snap-share/services/downloads"
)

// Ask the owner of the picture to receive it by email.
func (app *application) requestDownloadHandler(w http.ResponseWriter, r *http.Request) {
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

	req, err := app.downloads.Request(r.Context(), galleryID, pictureID)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"download": req}, nil)
}

// List the requests waiting for a decision of the caller.
func (app *application) listDownloadRequestsHandler(w http.ResponseWriter, r *http.Request) {
	reqs, err := app.downloads.ListPending(r.Context())
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"downloads": reqs}, nil)
}

// Approve or deny a request. The request is accepted even if the delivery of an
// approved picture fails: the failure is reported in the body.
func (app *application) decideDownloadHandler(w http.ResponseWriter, r *http.Request) {
	reqID, err := readUrlIntParam(r, "req-id")
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	permit, err := readUrlBoolParam(r, "permit")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	decision, err := app.downloads.Decide(r.Context(), reqID, permit)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	body := env{"download": decision.Request, "state": decision.State}
	if decision.State == downloads.StateDeliveryFailed {
		body["message"] = "the picture could not be delivered, the requestor must ask again"
	}
	app.sendJSON(w, r, http.StatusOK, body, nil)
}
