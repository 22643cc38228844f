package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/openboard-dev/openboard/internal/domain"
	internal_errors "github.com/openboard-dev/openboard/internal/errors"
	"github.com/openboard-dev/openboard/internal/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type MockAccessStorage struct {
	BoardBySlugFunc func(username domain.Username, slug domain.BoardSlug) (domain.Board, error)
}

func (m *MockAccessStorage) BoardBySlug(username domain.Username, slug domain.BoardSlug) (domain.Board, error) {
	if m.BoardBySlugFunc != nil {
		return m.BoardBySlugFunc(username, slug)
	}
	return domain.Board{}, internal_errors.NotFound("Board not found")
}

func accessBoard(privacy domain.Privacy) domain.Board {
	board := domain.Board{
		Id: "b1", Slug: "my-links", Title: "My links",
		OwnerId: 1, OwnerUsername: "casey",
		Privacy: privacy,
		Blocks: []domain.Block{
			{Id: "x", Type: domain.BlockText, Order: 0, Visible: true, Settings: &domain.TextSettings{Text: "hi"}},
			{Id: "y", Type: domain.BlockText, Order: 1, Visible: false, Settings: &domain.TextSettings{Text: "draft"}},
		},
	}
	if privacy == domain.PrivacyPassword {
		hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
		board.PasswordHash = string(hash)
	}
	return board
}

func accessStorageFor(privacy domain.Privacy) *MockAccessStorage {
	return &MockAccessStorage{
		BoardBySlugFunc: func(username domain.Username, slug domain.BoardSlug) (domain.Board, error) {
			return accessBoard(privacy), nil
		},
	}
}

func newAccess(privacy domain.Privacy) *Access {
	return NewAccess(accessStorageFor(privacy), jwt.New("test-secret", time.Hour), 15*time.Minute)
}

// --- Tests ---

func TestResolvePublic(t *testing.T) {
	t.Run("public board visible to anyone", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPublic)
		view, err := svc.ResolvePublic("casey", "my-links", nil, "")
		require.NoError(t, err)
		require.Len(t, view.Blocks, 1)
		assert.Equal(t, domain.BlockId("x"), view.Blocks[0].Id)
	})

	t.Run("unlisted board visible to anyone with the link", func(t *testing.T) {
		svc := newAccess(domain.PrivacyUnlisted)
		_, err := svc.ResolvePublic("casey", "my-links", nil, "")
		assert.NoError(t, err)
	})

	t.Run("private board hidden from strangers", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPrivate)
		_, err := svc.ResolvePublic("casey", "my-links", &stranger, "")
		assert.True(t, internal_errors.IsNotFound(err))
	})

	t.Run("private board visible to owner", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPrivate)
		_, err := svc.ResolvePublic("casey", "my-links", &owner, "")
		assert.NoError(t, err)
	})

	t.Run("password board asks for password", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPassword)
		_, err := svc.ResolvePublic("casey", "my-links", nil, "")
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})

	t.Run("garbage grant denied", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPassword)
		_, err := svc.ResolvePublic("casey", "my-links", nil, "not-a-jwt")
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})

	t.Run("grant for another board denied", func(t *testing.T) {
		jwtService := jwt.New("test-secret", time.Hour)
		svc := NewAccess(accessStorageFor(domain.PrivacyPassword), jwtService, 15*time.Minute)

		otherGrant, err := jwtService.NewBoardGrant("b2", 15*time.Minute)
		require.NoError(t, err)

		_, err = svc.ResolvePublic("casey", "my-links", nil, otherGrant)
		require.Error(t, err)
	})
}

func TestUnlock(t *testing.T) {
	t.Run("correct password issues working grant", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPassword)

		grant, err := svc.Unlock("casey", "my-links", "hunter22")
		require.NoError(t, err)
		require.NotEmpty(t, grant)

		view, err := svc.ResolvePublic("casey", "my-links", nil, grant)
		require.NoError(t, err)
		assert.Equal(t, "My links", view.Title)
	})

	t.Run("wrong password denied", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPassword)
		_, err := svc.Unlock("casey", "my-links", "wrong")
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})

	t.Run("unlock on non-password board rejected", func(t *testing.T) {
		svc := newAccess(domain.PrivacyPublic)
		_, err := svc.Unlock("casey", "my-links", "hunter22")
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})
}
