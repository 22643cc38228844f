package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/openboard-dev/openboard/internal/domain"
	internal_errors "github.com/openboard-dev/openboard/internal/errors"
)

const boardColumns = `b.id, b.slug, b.title, b.description, b.owner_id, u.username,
	b.collaborators, b.blocks, b.layout, b.theme, b.privacy, b.password_hash,
	b.seo, b.views, b.clicks,
	(b.created_at at time zone 'utc'), (b.updated_at at time zone 'utc')`

// =========================================================================
// Public Methods (satisfy the service.BoardStorage interface)
// =========================================================================

// CreateBoard inserts a new board row. Slug collisions within the same
// owner come back as 409.
func (s *Storage) CreateBoard(board domain.Board) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.createBoard(tx, board)
	})
}

// Board fetches a single board by id, blocks included.
func (s *Storage) Board(id domain.BoardId) (domain.Board, error) {
	return s.board(s.db, id)
}

// BoardBySlug resolves a board from its public address: owner username plus
// slug.
func (s *Storage) BoardBySlug(username domain.Username, slug domain.BoardSlug) (domain.Board, error) {
	return s.boardBySlug(s.db, username, slug)
}

// BoardsByOwner lists the boards a user owns, newest first.
func (s *Storage) BoardsByOwner(ownerId domain.UserId) ([]domain.Board, error) {
	return s.boardsByOwner(s.db, ownerId)
}

// UpdateBoard writes the whole document back: metadata, theme, seo and the
// full block collection. This is the persistence half of the editor's save
// operation, so the write is a single atomic row update.
func (s *Storage) UpdateBoard(board domain.Board) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updateBoard(tx, board)
	})
}

// DeleteBoard removes a board row.
func (s *Storage) DeleteBoard(id domain.BoardId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteBoard(tx, id)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) createBoard(q Querier, board domain.Board) error {
	blocks, theme, seo, err := marshalDocument(board)
	if err != nil {
		return err
	}

	_, err = q.Exec(`
        INSERT INTO boards(id, slug, title, description, owner_id, collaborators,
                           blocks, layout, theme, privacy, password_hash, seo)
        VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		board.Id, board.Slug, board.Title, board.Description, board.OwnerId,
		collaboratorsValue(board.Collaborators), blocks, board.Layout, theme,
		board.Privacy, board.PasswordHash, seo,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return &internal_errors.ErrorWithStatusCode{Message: "Slug already taken", StatusCode: http.StatusConflict}
		}
		return fmt.Errorf("failed to insert board: %w", err)
	}
	return nil
}

func (s *Storage) board(q Querier, id domain.BoardId) (domain.Board, error) {
	row := q.QueryRow(`
        SELECT `+boardColumns+`
        FROM boards b JOIN users u ON u.id = b.owner_id
        WHERE b.id = $1`, id)
	return scanBoard(row)
}

func (s *Storage) boardBySlug(q Querier, username domain.Username, slug domain.BoardSlug) (domain.Board, error) {
	row := q.QueryRow(`
        SELECT `+boardColumns+`
        FROM boards b JOIN users u ON u.id = b.owner_id
        WHERE u.username = $1 AND b.slug = $2`, username, slug)
	return scanBoard(row)
}

func (s *Storage) boardsByOwner(q Querier, ownerId domain.UserId) ([]domain.Board, error) {
	rows, err := q.Query(`
        SELECT `+boardColumns+`
        FROM boards b JOIN users u ON u.id = b.owner_id
        WHERE b.owner_id = $1
        ORDER BY b.created_at DESC`, ownerId)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boards: %w", err)
	}
	return boards, nil
}

func (s *Storage) updateBoard(q Querier, board domain.Board) error {
	blocks, theme, seo, err := marshalDocument(board)
	if err != nil {
		return err
	}

	result, err := q.Exec(`
        UPDATE boards
        SET slug = $2, title = $3, description = $4, collaborators = $5,
            blocks = $6, layout = $7, theme = $8, privacy = $9,
            password_hash = $10, seo = $11, updated_at = now()
        WHERE id = $1`,
		board.Id, board.Slug, board.Title, board.Description,
		collaboratorsValue(board.Collaborators), blocks, board.Layout, theme,
		board.Privacy, board.PasswordHash, seo,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return &internal_errors.ErrorWithStatusCode{Message: "Slug already taken", StatusCode: http.StatusConflict}
		}
		return fmt.Errorf("failed to update board: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for board update: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) deleteBoard(q Querier, id domain.BoardId) error {
	result, err := q.Exec("DELETE FROM boards WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for board deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

// =========================================================================
// Row Mapping
// =========================================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// collaboratorsValue avoids writing NULL into the text[] column when the
// slice is nil.
func collaboratorsValue(c domain.Collaborators) domain.Collaborators {
	if c == nil {
		return domain.Collaborators{}
	}
	return c
}

func marshalDocument(board domain.Board) (blocks, theme, seo []byte, err error) {
	if board.Blocks == nil {
		board.Blocks = []domain.Block{}
	}
	blocks, err = json.Marshal(board.Blocks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal blocks: %w", err)
	}
	theme, err = json.Marshal(board.Theme)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal theme: %w", err)
	}
	seo, err = json.Marshal(board.Seo)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal seo: %w", err)
	}
	return blocks, theme, seo, nil
}

func scanBoard(row rowScanner) (domain.Board, error) {
	var board domain.Board
	var blocks, theme, seo []byte
	err := row.Scan(
		&board.Id, &board.Slug, &board.Title, &board.Description,
		&board.OwnerId, &board.OwnerUsername, &board.Collaborators,
		&blocks, &board.Layout, &theme, &board.Privacy, &board.PasswordHash,
		&seo, &board.Analytics.Views, &board.Analytics.Clicks,
		&board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
		}
		return domain.Board{}, fmt.Errorf("failed to scan board: %w", err)
	}

	if err := json.Unmarshal(blocks, &board.Blocks); err != nil {
		return domain.Board{}, fmt.Errorf("failed to unmarshal blocks: %w", err)
	}
	if err := json.Unmarshal(theme, &board.Theme); err != nil {
		return domain.Board{}, fmt.Errorf("failed to unmarshal theme: %w", err)
	}
	if err := json.Unmarshal(seo, &board.Seo); err != nil {
		return domain.Board{}, fmt.Errorf("failed to unmarshal seo: %w", err)
	}
	return board, nil
}
