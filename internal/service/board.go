package service

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/errors"
	"github.com/openboard-dev/openboard/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

type BoardService interface {
	Create(owner domain.User, title string, slug domain.BoardSlug) (domain.Board, error)
	Get(id domain.BoardId, user domain.User) (domain.Board, error)
	GetAll(user domain.User) ([]domain.Board, error)
	Update(id domain.BoardId, user domain.User, patch domain.BoardPatch, password *string) (domain.Board, error)
	Delete(id domain.BoardId, user domain.User) error
}

type BoardStorage interface {
	CreateBoard(board domain.Board) error
	Board(id domain.BoardId) (domain.Board, error)
	BoardsByOwner(ownerId domain.UserId) ([]domain.Board, error)
	UpdateBoard(board domain.Board) error
	DeleteBoard(id domain.BoardId) error
}

// SessionSync mirrors board metadata changes into the user's open editing
// session. Without it a session opened before the edit would write its stale
// metadata back on the next save. Implemented by the Editor service; nil
// disables syncing.
type SessionSync interface {
	BoardMetaUpdated(userId domain.UserId, board domain.Board, patch domain.BoardPatch)
}

type Board struct {
	storage  BoardStorage
	sessions SessionSync
}

func NewBoard(storage BoardStorage, sessions SessionSync) *Board {
	return &Board{storage: storage, sessions: sessions}
}

// slugPattern keeps slugs usable as a URL path segment: lowercase
// alphanumerics and hyphens, no leading or trailing hyphen, 2 to 50 chars.
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,48}[a-z0-9])?$`)

func validateSlug(slug domain.BoardSlug) error {
	if !slugPattern.MatchString(string(slug)) {
		return &errors.ErrorWithStatusCode{
			Message:    "Slug must be 1-50 lowercase letters, digits or hyphens and cannot start or end with a hyphen",
			StatusCode: http.StatusBadRequest,
		}
	}
	return nil
}

// Create makes an empty public board owned by the caller.
func (s *Board) Create(owner domain.User, title string, slug domain.BoardSlug) (domain.Board, error) {
	if err := validateSlug(slug); err != nil {
		return domain.Board{}, err
	}

	now := time.Now().UTC()
	board := domain.Board{
		Id:            uuid.NewString(),
		Slug:          slug,
		Title:         title,
		OwnerId:       owner.Id,
		OwnerUsername: owner.Username,
		Blocks:        []domain.Block{},
		Privacy:       domain.PrivacyPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.storage.CreateBoard(board); err != nil {
		return domain.Board{}, err
	}
	logger.Log.Info("board created", "board_id", board.Id, "owner_id", owner.Id)
	return board, nil
}

// Get returns the board if the caller owns it or is listed as a
// collaborator. Everyone else gets 404 so private board ids leak nothing.
func (s *Board) Get(id domain.BoardId, user domain.User) (domain.Board, error) {
	board, err := s.storage.Board(id)
	if err != nil {
		return domain.Board{}, err
	}
	if board.OwnerId != user.Id && !board.HasCollaborator(user.Username) {
		return domain.Board{}, errors.NotFound("Board not found")
	}
	return board, nil
}

func (s *Board) GetAll(user domain.User) ([]domain.Board, error) {
	return s.storage.BoardsByOwner(user.Id)
}

// Update applies a metadata patch. When the patch switches privacy to
// password mode a plain password must accompany it; it is bcrypt-hashed
// before the board is written and the plain form is dropped here.
func (s *Board) Update(id domain.BoardId, user domain.User, patch domain.BoardPatch, password *string) (domain.Board, error) {
	board, err := s.Get(id, user)
	if err != nil {
		return domain.Board{}, err
	}

	if patch.Slug != nil {
		if err := validateSlug(*patch.Slug); err != nil {
			return domain.Board{}, err
		}
	}
	if patch.Privacy != nil && !patch.Privacy.Valid() {
		return domain.Board{}, errors.BadRequest(fmt.Sprintf("Unknown privacy mode %q", *patch.Privacy))
	}

	if err := patch.Apply(&board); err != nil {
		return domain.Board{}, errors.BadRequest("Malformed patch: " + err.Error())
	}

	if board.Privacy == domain.PrivacyPassword {
		if password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
			if err != nil {
				logger.Log.Error("failed to hash board password", "error", err)
				return domain.Board{}, err
			}
			board.PasswordHash = string(hash)
		}
		if board.PasswordHash == "" {
			return domain.Board{}, errors.BadRequest("Password privacy requires a password")
		}
	} else {
		board.PasswordHash = ""
	}

	if err := s.storage.UpdateBoard(board); err != nil {
		return domain.Board{}, err
	}
	if s.sessions != nil {
		s.sessions.BoardMetaUpdated(user.Id, board, patch)
	}
	return board, nil
}

// Delete removes the board. Only the owner may delete; collaborators cannot.
func (s *Board) Delete(id domain.BoardId, user domain.User) error {
	board, err := s.storage.Board(id)
	if err != nil {
		return err
	}
	if board.OwnerId != user.Id {
		return errors.NotFound("Board not found")
	}
	return s.storage.DeleteBoard(id)
}
