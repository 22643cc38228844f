package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openboard-dev/openboard/internal/domain"
	internal_errors "github.com/openboard-dev/openboard/internal/errors"
)

// =========================================================================
// Public Methods (satisfy the service.AnalyticsStorage interface)
// =========================================================================

// AddAnalytics adds view and click deltas to a board's counters. The
// analytics service batches increments in memory and flushes them here on a
// schedule, so a single call may carry many events.
func (s *Storage) AddAnalytics(boardId domain.BoardId, delta domain.AnalyticsSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.addAnalytics(tx, boardId, delta)
	})
}

// Analytics reads the current counters for a board.
func (s *Storage) Analytics(boardId domain.BoardId) (domain.AnalyticsSummary, error) {
	return s.analytics(s.db, boardId)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) addAnalytics(q Querier, boardId domain.BoardId, delta domain.AnalyticsSummary) error {
	result, err := q.Exec(
		"UPDATE boards SET views = views + $2, clicks = clicks + $3 WHERE id = $1",
		boardId, delta.Views, delta.Clicks)
	if err != nil {
		return fmt.Errorf("failed to update analytics: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for analytics update: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) analytics(q Querier, boardId domain.BoardId) (domain.AnalyticsSummary, error) {
	var summary domain.AnalyticsSummary
	err := q.QueryRow("SELECT views, clicks FROM boards WHERE id = $1", boardId).
		Scan(&summary.Views, &summary.Clicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AnalyticsSummary{}, &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
		}
		return domain.AnalyticsSummary{}, fmt.Errorf("failed to query analytics: %w", err)
	}
	return summary, nil
}
