package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openboard-dev/openboard/internal/api"
	"github.com/openboard-dev/openboard/internal/domain"
	mw "github.com/openboard-dev/openboard/internal/middleware"
	"github.com/openboard-dev/openboard/internal/service"
	"github.com/openboard-dev/openboard/internal/utils"
)

func toStateResponse(st service.EditorState) api.EditorStateResponse {
	return api.EditorStateResponse{
		Board:      st.Board,
		CanUndo:    st.CanUndo,
		CanRedo:    st.CanRedo,
		Dirty:      st.Dirty,
		HistoryLen: st.HistoryLen,
	}
}

// withEditorUser extracts the authenticated user or ends the request.
func withEditorUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
	}
	return user
}

func (h *Handler) OpenBoard(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.Open(*user, chi.URLParam(r, "board"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) CloseBoard(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	if err := h.editor.Close(*user); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) EditorState(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.State(*user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.Save(*user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	var body api.AddBlockRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	st, err := h.editor.AddBlock(*user, body.Type, body.Settings, body.Visible)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toStateResponse(st))
}

func (h *Handler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	var body api.UpdateBlockRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	st, err := h.editor.UpdateBlock(*user, chi.URLParam(r, "block"), body.BlockPatch)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.DeleteBlock(*user, chi.URLParam(r, "block"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) DuplicateBlock(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.DuplicateBlock(*user, chi.URLParam(r, "block"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toStateResponse(st))
}

func (h *Handler) ToggleBlockVisibility(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.ToggleBlockVisibility(*user, chi.URLParam(r, "block"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) ReorderBlocks(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	var body api.ReorderRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	st, err := h.editor.ReorderBlocks(*user, body.BlockIds)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) MoveBlock(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	var body api.MoveBlockRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	st, err := h.editor.MoveBlock(*user, body.BlockId, body.TargetId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) DeleteMultipleBlocks(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	var body api.BatchDeleteRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	st, err := h.editor.DeleteMultipleBlocks(*user, body.BlockIds)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) UpdateMultipleBlocks(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	var body api.BatchUpdateRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	st, err := h.editor.UpdateMultipleBlocks(*user, body.Updates)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.Undo(*user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	user := withEditorUser(w, r)
	if user == nil {
		return
	}

	st, err := h.editor.Redo(*user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toStateResponse(st))
}
