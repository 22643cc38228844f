package service

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/openboard-dev/openboard/internal/domain"
	internal_errors "github.com/openboard-dev/openboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type MockBoardStorage struct {
	CreateBoardFunc   func(board domain.Board) error
	BoardFunc         func(id domain.BoardId) (domain.Board, error)
	BoardsByOwnerFunc func(ownerId domain.UserId) ([]domain.Board, error)
	UpdateBoardFunc   func(board domain.Board) error
	DeleteBoardFunc   func(id domain.BoardId) error
}

func (m *MockBoardStorage) CreateBoard(board domain.Board) error {
	if m.CreateBoardFunc != nil {
		return m.CreateBoardFunc(board)
	}
	return nil
}

func (m *MockBoardStorage) Board(id domain.BoardId) (domain.Board, error) {
	if m.BoardFunc != nil {
		return m.BoardFunc(id)
	}
	return domain.Board{Id: id, Slug: "my-links", Title: "My links", OwnerId: 1, OwnerUsername: "casey", Privacy: domain.PrivacyPublic}, nil
}

func (m *MockBoardStorage) BoardsByOwner(ownerId domain.UserId) ([]domain.Board, error) {
	if m.BoardsByOwnerFunc != nil {
		return m.BoardsByOwnerFunc(ownerId)
	}
	return nil, nil
}

func (m *MockBoardStorage) UpdateBoard(board domain.Board) error {
	if m.UpdateBoardFunc != nil {
		return m.UpdateBoardFunc(board)
	}
	return nil
}

func (m *MockBoardStorage) DeleteBoard(id domain.BoardId) error {
	if m.DeleteBoardFunc != nil {
		return m.DeleteBoardFunc(id)
	}
	return nil
}

var owner = domain.User{Id: 1, Username: "casey"}
var stranger = domain.User{Id: 2, Username: "sam"}

// --- Tests ---

func TestBoardCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var created domain.Board
		storage := &MockBoardStorage{
			CreateBoardFunc: func(board domain.Board) error {
				created = board
				return nil
			},
		}
		svc := NewBoard(storage, nil)

		board, err := svc.Create(owner, "My links", "my-links")
		require.NoError(t, err)

		assert.NotEmpty(t, board.Id)
		assert.Equal(t, domain.PrivacyPublic, created.Privacy)
		assert.NotNil(t, created.Blocks)
		assert.Empty(t, created.Blocks)
		assert.Equal(t, owner.Id, created.OwnerId)
	})

	t.Run("rejects bad slugs", func(t *testing.T) {
		svc := NewBoard(&MockBoardStorage{}, nil)
		for _, slug := range []domain.BoardSlug{"", "-leading", "trailing-", "UPPER", "has space", "tööt"} {
			_, err := svc.Create(owner, "My links", slug)
			var statusErr *internal_errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &statusErr, "slug %q", slug)
			assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
		}
	})

	t.Run("accepts single char and hyphenated slugs", func(t *testing.T) {
		svc := NewBoard(&MockBoardStorage{}, nil)
		for _, slug := range []domain.BoardSlug{"x", "my-links", "a1-b2-c3"} {
			_, err := svc.Create(owner, "My links", slug)
			assert.NoError(t, err, "slug %q", slug)
		}
	})
}

func TestBoardGet(t *testing.T) {
	t.Run("owner sees board", func(t *testing.T) {
		svc := NewBoard(&MockBoardStorage{}, nil)
		board, err := svc.Get("b1", owner)
		require.NoError(t, err)
		assert.Equal(t, domain.BoardId("b1"), board.Id)
	})

	t.Run("collaborator sees board", func(t *testing.T) {
		storage := &MockBoardStorage{
			BoardFunc: func(id domain.BoardId) (domain.Board, error) {
				return domain.Board{Id: id, OwnerId: 1, Collaborators: domain.Collaborators{"sam"}}, nil
			},
		}
		svc := NewBoard(storage, nil)
		_, err := svc.Get("b1", stranger)
		assert.NoError(t, err)
	})

	t.Run("stranger gets 404 not 403", func(t *testing.T) {
		svc := NewBoard(&MockBoardStorage{}, nil)
		_, err := svc.Get("b1", stranger)
		assert.True(t, internal_errors.IsNotFound(err))
	})
}

func TestBoardUpdate(t *testing.T) {
	t.Run("applies patch", func(t *testing.T) {
		var updated domain.Board
		storage := &MockBoardStorage{
			UpdateBoardFunc: func(board domain.Board) error {
				updated = board
				return nil
			},
		}
		svc := NewBoard(storage, nil)

		title := "New title"
		_, err := svc.Update("b1", owner, domain.BoardPatch{
			Title: &title,
			Theme: json.RawMessage(`{"background":"#000"}`),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, "#000", updated.Theme.Background)
	})

	t.Run("password privacy hashes the password", func(t *testing.T) {
		var updated domain.Board
		storage := &MockBoardStorage{
			UpdateBoardFunc: func(board domain.Board) error {
				updated = board
				return nil
			},
		}
		svc := NewBoard(storage, nil)

		privacy := domain.PrivacyPassword
		password := "hunter22"
		_, err := svc.Update("b1", owner, domain.BoardPatch{Privacy: &privacy}, &password)
		require.NoError(t, err)

		assert.NotEqual(t, "hunter22", updated.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("hunter22")))
	})

	t.Run("password privacy without password rejected", func(t *testing.T) {
		svc := NewBoard(&MockBoardStorage{}, nil)
		privacy := domain.PrivacyPassword
		_, err := svc.Update("b1", owner, domain.BoardPatch{Privacy: &privacy}, nil)
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})

	t.Run("leaving password mode clears the hash", func(t *testing.T) {
		var updated domain.Board
		storage := &MockBoardStorage{
			BoardFunc: func(id domain.BoardId) (domain.Board, error) {
				return domain.Board{Id: id, OwnerId: 1, Privacy: domain.PrivacyPassword, PasswordHash: "$2a$10$something"}, nil
			},
			UpdateBoardFunc: func(board domain.Board) error {
				updated = board
				return nil
			},
		}
		svc := NewBoard(storage, nil)

		privacy := domain.PrivacyPublic
		_, err := svc.Update("b1", owner, domain.BoardPatch{Privacy: &privacy}, nil)
		require.NoError(t, err)
		assert.Empty(t, updated.PasswordHash)
	})

	t.Run("unknown privacy mode rejected", func(t *testing.T) {
		svc := NewBoard(&MockBoardStorage{}, nil)
		privacy := domain.Privacy("friends-only")
		_, err := svc.Update("b1", owner, domain.BoardPatch{Privacy: &privacy}, nil)
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})
}

// A metadata edit through the boards API must land in an open editing
// session; otherwise the session's next save writes the pre-edit metadata
// back over it.
func TestBoardUpdateSyncsOpenSession(t *testing.T) {
	t.Run("title edit survives a later editor save", func(t *testing.T) {
		stored := domain.Board{Id: "b1", Slug: "my-links", Title: "Old title", OwnerId: 1,
			OwnerUsername: "casey", Blocks: []domain.Block{}, Privacy: domain.PrivacyPublic}

		editorStorage := &MockEditorStorage{
			BoardFunc:       func(id domain.BoardId) (domain.Board, error) { return stored.Clone(), nil },
			UpdateBoardFunc: func(board domain.Board) error { stored = board; return nil },
		}
		boardStorage := &MockBoardStorage{
			BoardFunc:       func(id domain.BoardId) (domain.Board, error) { return stored.Clone(), nil },
			UpdateBoardFunc: func(board domain.Board) error { stored = board; return nil },
		}

		ed := NewEditor(editorStorage, testEditorCfg())
		boards := NewBoard(boardStorage, ed)

		_, err := ed.Open(owner, "b1")
		require.NoError(t, err)

		title := "New title"
		_, err = boards.Update("b1", owner, domain.BoardPatch{Title: &title}, nil)
		require.NoError(t, err)

		st, err := ed.State(owner)
		require.NoError(t, err)
		assert.Equal(t, "New title", st.Board.Title)

		_, err = ed.Save(owner)
		require.NoError(t, err)
		assert.Equal(t, "New title", stored.Title)
	})

	t.Run("password change survives a later editor save", func(t *testing.T) {
		stored := domain.Board{Id: "b1", Slug: "my-links", Title: "My links", OwnerId: 1,
			OwnerUsername: "casey", Blocks: []domain.Block{}, Privacy: domain.PrivacyPublic}

		editorStorage := &MockEditorStorage{
			BoardFunc:       func(id domain.BoardId) (domain.Board, error) { return stored.Clone(), nil },
			UpdateBoardFunc: func(board domain.Board) error { stored = board; return nil },
		}
		boardStorage := &MockBoardStorage{
			BoardFunc:       func(id domain.BoardId) (domain.Board, error) { return stored.Clone(), nil },
			UpdateBoardFunc: func(board domain.Board) error { stored = board; return nil },
		}

		ed := NewEditor(editorStorage, testEditorCfg())
		boards := NewBoard(boardStorage, ed)

		_, err := ed.Open(owner, "b1")
		require.NoError(t, err)

		privacy := domain.PrivacyPassword
		password := "hunter22"
		_, err = boards.Update("b1", owner, domain.BoardPatch{Privacy: &privacy}, &password)
		require.NoError(t, err)

		_, err = ed.Save(owner)
		require.NoError(t, err)
		assert.Equal(t, domain.PrivacyPassword, stored.Privacy)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
	})

	t.Run("no open session is fine", func(t *testing.T) {
		ed := NewEditor(&MockEditorStorage{}, testEditorCfg())
		boards := NewBoard(&MockBoardStorage{}, ed)

		title := "New title"
		_, err := boards.Update("b1", owner, domain.BoardPatch{Title: &title}, nil)
		assert.NoError(t, err)
	})
}

func TestBoardDelete(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		deleted := false
		storage := &MockBoardStorage{
			DeleteBoardFunc: func(id domain.BoardId) error {
				deleted = true
				return nil
			},
		}
		svc := NewBoard(storage, nil)
		require.NoError(t, svc.Delete("b1", owner))
		assert.True(t, deleted)
	})

	t.Run("collaborator cannot delete", func(t *testing.T) {
		storage := &MockBoardStorage{
			BoardFunc: func(id domain.BoardId) (domain.Board, error) {
				return domain.Board{Id: id, OwnerId: 1, Collaborators: domain.Collaborators{"sam"}}, nil
			},
		}
		svc := NewBoard(storage, nil)
		err := svc.Delete("b1", stranger)
		assert.True(t, internal_errors.IsNotFound(err))
	})
}
