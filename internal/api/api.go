// Package api holds the request and response DTOs shared by handlers and
// tests.
package api

import (
	"encoding/json"

	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/editor"
)

// Request DTOs

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateBoardRequest struct {
	Title string `json:"title" validate:"required,max=120"`
	Slug  string `json:"slug" validate:"required"`
}

// UpdateBoardRequest carries a metadata patch. Password is only meaningful
// together with privacy "password"; it is hashed in the service and never
// stored in plain form.
type UpdateBoardRequest struct {
	domain.BoardPatch
	Password *string `json:"password,omitempty"`
}

type AddBlockRequest struct {
	Type     domain.BlockType `json:"type" validate:"required"`
	Settings json.RawMessage  `json:"settings,omitempty"`
	Visible  *bool            `json:"visible,omitempty"`
}

type UpdateBlockRequest struct {
	domain.BlockPatch
}

type ReorderRequest struct {
	BlockIds []domain.BlockId `json:"block_ids" validate:"required"`
}

type MoveBlockRequest struct {
	BlockId  domain.BlockId `json:"block_id" validate:"required"`
	TargetId domain.BlockId `json:"target_id" validate:"required"`
}

type BatchDeleteRequest struct {
	BlockIds []domain.BlockId `json:"block_ids" validate:"required,min=1"`
}

type BatchUpdateRequest struct {
	Updates []editor.BlockUpdate `json:"updates" validate:"required,min=1,dive"`
}

type UnlockRequest struct {
	Password string `json:"password" validate:"required"`
}

// Response DTOs

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type BoardResponse struct {
	domain.Board
}

type BoardListResponse struct {
	Boards []domain.Board `json:"boards"`
}

type PublicBoardResponse struct {
	domain.PublicBoard
}

type UnlockResponse struct {
	Grant string `json:"grant"`
}

// EditorStateResponse reflects the open session back to the editor UI so it
// can enable/disable undo, redo and save controls.
type EditorStateResponse struct {
	Board      *domain.Board `json:"board"`
	CanUndo    bool          `json:"can_undo"`
	CanRedo    bool          `json:"can_redo"`
	Dirty      bool          `json:"dirty"`
	HistoryLen int           `json:"history_len"`
}
