package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openboard-dev/openboard/internal/config"
	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/editor"
	internal_errors "github.com/openboard-dev/openboard/internal/errors"
	mw "github.com/openboard-dev/openboard/internal/middleware"
	"github.com/openboard-dev/openboard/internal/render"
	"github.com/openboard-dev/openboard/internal/service"
)

var testUser = domain.User{Id: 1, Username: "casey"}

// asUser injects the user into the request context the way the auth
// middleware would.
func asUser(req *http.Request, user domain.User) *http.Request {
	ctx := context.WithValue(req.Context(), mw.UserClaimsKey, &user)
	return req.WithContext(ctx)
}

func newTestHandler() *Handler {
	return &Handler{
		auth:      &MockAuthService{},
		board:     &MockBoardServiceH{},
		editor:    &MockEditorService{},
		access:    &MockAccessService{},
		analytics: &MockAnalyticsService{},
		renderer:  render.New(),
		health:    &MockHealthChecker{},
		cfg:       &config.Config{},
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// --- Mocks ---

type MockAuthService struct {
	MockRegister func(email domain.Email, username domain.Username, password domain.Password) (domain.User, string, error)
	MockLogin    func(creds domain.Credentials) (domain.User, string, error)
}

func (m *MockAuthService) Register(email domain.Email, username domain.Username, password domain.Password) (domain.User, string, error) {
	if m.MockRegister != nil {
		return m.MockRegister(email, username, password)
	}
	return testUser, "token", nil
}

func (m *MockAuthService) Login(creds domain.Credentials) (domain.User, string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(creds)
	}
	return testUser, "token", nil
}

type MockBoardServiceH struct {
	MockCreate func(owner domain.User, title string, slug domain.BoardSlug) (domain.Board, error)
	MockGet    func(id domain.BoardId, user domain.User) (domain.Board, error)
	MockGetAll func(user domain.User) ([]domain.Board, error)
	MockUpdate func(id domain.BoardId, user domain.User, patch domain.BoardPatch, password *string) (domain.Board, error)
	MockDelete func(id domain.BoardId, user domain.User) error
}

func (m *MockBoardServiceH) Create(owner domain.User, title string, slug domain.BoardSlug) (domain.Board, error) {
	if m.MockCreate != nil {
		return m.MockCreate(owner, title, slug)
	}
	return domain.Board{Id: "b1", Title: title, Slug: slug, OwnerId: owner.Id}, nil
}

func (m *MockBoardServiceH) Get(id domain.BoardId, user domain.User) (domain.Board, error) {
	if m.MockGet != nil {
		return m.MockGet(id, user)
	}
	return domain.Board{Id: id, OwnerId: user.Id}, nil
}

func (m *MockBoardServiceH) GetAll(user domain.User) ([]domain.Board, error) {
	if m.MockGetAll != nil {
		return m.MockGetAll(user)
	}
	return []domain.Board{{Id: "b1", OwnerId: user.Id}}, nil
}

func (m *MockBoardServiceH) Update(id domain.BoardId, user domain.User, patch domain.BoardPatch, password *string) (domain.Board, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(id, user, patch, password)
	}
	return domain.Board{Id: id, OwnerId: user.Id}, nil
}

func (m *MockBoardServiceH) Delete(id domain.BoardId, user domain.User) error {
	if m.MockDelete != nil {
		return m.MockDelete(id, user)
	}
	return nil
}

type MockEditorService struct {
	MockOpen                  func(user domain.User, boardId domain.BoardId) (service.EditorState, error)
	MockClose                 func(user domain.User) error
	MockState                 func(user domain.User) (service.EditorState, error)
	MockSave                  func(user domain.User) (service.EditorState, error)
	MockAddBlock              func(user domain.User, blockType domain.BlockType, settings json.RawMessage, visible *bool) (service.EditorState, error)
	MockUpdateBlock           func(user domain.User, blockId domain.BlockId, patch domain.BlockPatch) (service.EditorState, error)
	MockDeleteBlock           func(user domain.User, blockId domain.BlockId) (service.EditorState, error)
	MockDuplicateBlock        func(user domain.User, blockId domain.BlockId) (service.EditorState, error)
	MockToggleBlockVisibility func(user domain.User, blockId domain.BlockId) (service.EditorState, error)
	MockReorderBlocks         func(user domain.User, orderedIds []domain.BlockId) (service.EditorState, error)
	MockMoveBlock             func(user domain.User, draggedId, targetId domain.BlockId) (service.EditorState, error)
	MockDeleteMultipleBlocks  func(user domain.User, blockIds []domain.BlockId) (service.EditorState, error)
	MockUpdateMultipleBlocks  func(user domain.User, updates []editor.BlockUpdate) (service.EditorState, error)
	MockUndo                  func(user domain.User) (service.EditorState, error)
	MockRedo                  func(user domain.User) (service.EditorState, error)
}

func emptyState() service.EditorState {
	return service.EditorState{Board: &domain.Board{Id: "b1"}, HistoryLen: 1}
}

func (m *MockEditorService) Open(user domain.User, boardId domain.BoardId) (service.EditorState, error) {
	if m.MockOpen != nil {
		return m.MockOpen(user, boardId)
	}
	return emptyState(), nil
}

func (m *MockEditorService) Close(user domain.User) error {
	if m.MockClose != nil {
		return m.MockClose(user)
	}
	return nil
}

func (m *MockEditorService) State(user domain.User) (service.EditorState, error) {
	if m.MockState != nil {
		return m.MockState(user)
	}
	return emptyState(), nil
}

func (m *MockEditorService) Save(user domain.User) (service.EditorState, error) {
	if m.MockSave != nil {
		return m.MockSave(user)
	}
	return emptyState(), nil
}

func (m *MockEditorService) AddBlock(user domain.User, blockType domain.BlockType, settings json.RawMessage, visible *bool) (service.EditorState, error) {
	if m.MockAddBlock != nil {
		return m.MockAddBlock(user, blockType, settings, visible)
	}
	return emptyState(), nil
}

func (m *MockEditorService) UpdateBlock(user domain.User, blockId domain.BlockId, patch domain.BlockPatch) (service.EditorState, error) {
	if m.MockUpdateBlock != nil {
		return m.MockUpdateBlock(user, blockId, patch)
	}
	return emptyState(), nil
}

func (m *MockEditorService) DeleteBlock(user domain.User, blockId domain.BlockId) (service.EditorState, error) {
	if m.MockDeleteBlock != nil {
		return m.MockDeleteBlock(user, blockId)
	}
	return emptyState(), nil
}

func (m *MockEditorService) DuplicateBlock(user domain.User, blockId domain.BlockId) (service.EditorState, error) {
	if m.MockDuplicateBlock != nil {
		return m.MockDuplicateBlock(user, blockId)
	}
	return emptyState(), nil
}

func (m *MockEditorService) ToggleBlockVisibility(user domain.User, blockId domain.BlockId) (service.EditorState, error) {
	if m.MockToggleBlockVisibility != nil {
		return m.MockToggleBlockVisibility(user, blockId)
	}
	return emptyState(), nil
}

func (m *MockEditorService) ReorderBlocks(user domain.User, orderedIds []domain.BlockId) (service.EditorState, error) {
	if m.MockReorderBlocks != nil {
		return m.MockReorderBlocks(user, orderedIds)
	}
	return emptyState(), nil
}

func (m *MockEditorService) MoveBlock(user domain.User, draggedId, targetId domain.BlockId) (service.EditorState, error) {
	if m.MockMoveBlock != nil {
		return m.MockMoveBlock(user, draggedId, targetId)
	}
	return emptyState(), nil
}

func (m *MockEditorService) DeleteMultipleBlocks(user domain.User, blockIds []domain.BlockId) (service.EditorState, error) {
	if m.MockDeleteMultipleBlocks != nil {
		return m.MockDeleteMultipleBlocks(user, blockIds)
	}
	return emptyState(), nil
}

func (m *MockEditorService) UpdateMultipleBlocks(user domain.User, updates []editor.BlockUpdate) (service.EditorState, error) {
	if m.MockUpdateMultipleBlocks != nil {
		return m.MockUpdateMultipleBlocks(user, updates)
	}
	return emptyState(), nil
}

func (m *MockEditorService) Undo(user domain.User) (service.EditorState, error) {
	if m.MockUndo != nil {
		return m.MockUndo(user)
	}
	return emptyState(), nil
}

func (m *MockEditorService) Redo(user domain.User) (service.EditorState, error) {
	if m.MockRedo != nil {
		return m.MockRedo(user)
	}
	return emptyState(), nil
}

type MockAccessService struct {
	MockResolvePublic func(username domain.Username, slug domain.BoardSlug, viewer *domain.User, grant string) (domain.PublicBoard, error)
	MockUnlock        func(username domain.Username, slug domain.BoardSlug, password string) (string, error)
}

func (m *MockAccessService) ResolvePublic(username domain.Username, slug domain.BoardSlug, viewer *domain.User, grant string) (domain.PublicBoard, error) {
	if m.MockResolvePublic != nil {
		return m.MockResolvePublic(username, slug, viewer, grant)
	}
	return domain.PublicBoard{Id: "b1", Slug: slug, Title: "My links", OwnerUsername: username}, nil
}

func (m *MockAccessService) Unlock(username domain.Username, slug domain.BoardSlug, password string) (string, error) {
	if m.MockUnlock != nil {
		return m.MockUnlock(username, slug, password)
	}
	return "grant", nil
}

type MockAnalyticsService struct {
	MockRecordView  func(boardId domain.BoardId)
	MockRecordClick func(boardId domain.BoardId)
	MockSummary     func(boardId domain.BoardId) (domain.AnalyticsSummary, error)
}

func (m *MockAnalyticsService) RecordView(boardId domain.BoardId) {
	if m.MockRecordView != nil {
		m.MockRecordView(boardId)
	}
}

func (m *MockAnalyticsService) RecordClick(boardId domain.BoardId) {
	if m.MockRecordClick != nil {
		m.MockRecordClick(boardId)
	}
}

func (m *MockAnalyticsService) Summary(boardId domain.BoardId) (domain.AnalyticsSummary, error) {
	if m.MockSummary != nil {
		return m.MockSummary(boardId)
	}
	return domain.AnalyticsSummary{}, nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

var errBoardMissing = internal_errors.NotFound("Board not found")
