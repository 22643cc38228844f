package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

type AccessService interface {
	ResolvePublic(username domain.Username, slug domain.BoardSlug, viewer *domain.User, grant string) (domain.PublicBoard, error)
	Unlock(username domain.Username, slug domain.BoardSlug, password string) (string, error)
}

type AccessStorage interface {
	BoardBySlug(username domain.Username, slug domain.BoardSlug) (domain.Board, error)
}

type GrantIssuer interface {
	NewBoardGrant(boardId domain.BoardId, ttl time.Duration) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
}

// Access is the privacy gate in front of public board rendering. It decides
// per request whether a visitor may see a board and projects the board to its
// public view when they may.
type Access struct {
	storage  AccessStorage
	jwt      GrantIssuer
	grantTTL time.Duration
}

func NewAccess(storage AccessStorage, jwt GrantIssuer, grantTTL time.Duration) *Access {
	return &Access{storage: storage, jwt: jwt, grantTTL: grantTTL}
}

// ResolvePublic fetches the board at username/slug and applies its privacy
// mode. Denials come back as 404 for private boards (their existence is not
// disclosed) and 401 for password boards (the client should prompt).
func (a *Access) ResolvePublic(username domain.Username, slug domain.BoardSlug, viewer *domain.User, grant string) (domain.PublicBoard, error) {
	board, err := a.storage.BoardBySlug(username, slug)
	if err != nil {
		return domain.PublicBoard{}, err
	}

	if a.isEditor(&board, viewer) {
		return board.PublicView(), nil
	}

	switch board.Privacy {
	case domain.PrivacyPublic, domain.PrivacyUnlisted:
		return board.PublicView(), nil
	case domain.PrivacyPrivate:
		return domain.PublicBoard{}, errors.NotFound("Board not found")
	case domain.PrivacyPassword:
		if a.grantCovers(grant, board.Id) {
			return board.PublicView(), nil
		}
		return domain.PublicBoard{}, errors.Unauthorized("This board is password protected")
	default:
		return domain.PublicBoard{}, errors.NotFound("Board not found")
	}
}

// Unlock checks a password attempt against a password-protected board and,
// on success, issues a short-lived grant token scoped to that board.
func (a *Access) Unlock(username domain.Username, slug domain.BoardSlug, password string) (string, error) {
	board, err := a.storage.BoardBySlug(username, slug)
	if err != nil {
		return "", err
	}
	if board.Privacy != domain.PrivacyPassword {
		return "", errors.BadRequest("Board is not password protected")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(board.PasswordHash), []byte(password)); err != nil {
		return "", errors.Unauthorized("Wrong password")
	}
	return a.jwt.NewBoardGrant(board.Id, a.grantTTL)
}

func (a *Access) isEditor(board *domain.Board, viewer *domain.User) bool {
	if viewer == nil {
		return false
	}
	return board.OwnerId == viewer.Id || board.HasCollaborator(viewer.Username)
}

// grantCovers reports whether the token is a valid grant for this board.
// Any parse or claim mismatch simply denies; the caller re-prompts.
func (a *Access) grantCovers(grant string, boardId domain.BoardId) bool {
	if grant == "" {
		return false
	}
	token, err := a.jwt.DecodeToken(grant)
	if err != nil {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	granted, ok := claims["board"].(string)
	return ok && granted == string(boardId)
}
