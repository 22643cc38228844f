package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openboard-dev/openboard/internal/api"
	mw "github.com/openboard-dev/openboard/internal/middleware"
	"github.com/openboard-dev/openboard/internal/utils"
)

// boardGrant pulls the password-unlock grant from the request. The client
// may send it as a header (API calls) or a query parameter (page loads).
func boardGrant(r *http.Request) string {
	if grant := r.Header.Get("X-Board-Grant"); grant != "" {
		return grant
	}
	return r.URL.Query().Get("grant")
}

// GetPublicBoard serves the public JSON projection of a board. Auth is
// optional: owners and collaborators see their private boards here too.
func (h *Handler) GetPublicBoard(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")

	view, err := h.access.ResolvePublic(username, slug, mw.GetUserFromContext(r), boardGrant(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.analytics.RecordView(view.Id)
	writeJSON(w, api.PublicBoardResponse{PublicBoard: view})
}

// GetPublicBoardPage serves the server-rendered HTML page for a board.
func (h *Handler) GetPublicBoardPage(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")

	view, err := h.access.ResolvePublic(username, slug, mw.GetUserFromContext(r), boardGrant(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	page, err := h.renderer.Page(view)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.analytics.RecordView(view.Id)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// UnlockBoard trades a correct board password for a short-lived grant token.
func (h *Handler) UnlockBoard(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")

	var body api.UnlockRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	grant, err := h.access.Unlock(username, slug, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.UnlockResponse{Grant: grant})
}

// TrackClick records a click on a block of a publicly reachable board.
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")

	// only boards the visitor can actually see accumulate clicks
	view, err := h.access.ResolvePublic(username, slug, mw.GetUserFromContext(r), boardGrant(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.analytics.RecordClick(view.Id)
	w.WriteHeader(http.StatusNoContent)
}
