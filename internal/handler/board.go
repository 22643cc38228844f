package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openboard-dev/openboard/internal/api"
	"github.com/openboard-dev/openboard/internal/domain"
	mw "github.com/openboard-dev/openboard/internal/middleware"
	"github.com/openboard-dev/openboard/internal/utils"
)

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.CreateBoardRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	board, err := h.board.Create(*user, body.Title, domain.BoardSlug(body.Slug))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.BoardResponse{Board: board})
}

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	boards, err := h.board.GetAll(*user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.BoardListResponse{Boards: boards})
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	board, err := h.board.Get(chi.URLParam(r, "board"), *user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.BoardResponse{Board: board})
}

func (h *Handler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.UpdateBoardRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	board, err := h.board.Update(chi.URLParam(r, "board"), *user, body.BoardPatch, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.BoardResponse{Board: board})
}

func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	if err := h.board.Delete(chi.URLParam(r, "board"), *user); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetBoardAnalytics(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	boardId := chi.URLParam(r, "board")
	// ownership check rides on the board fetch
	if _, err := h.board.Get(boardId, *user); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	summary, err := h.analytics.Summary(boardId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, summary)
}
