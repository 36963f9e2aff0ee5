package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// MapError converts pgx/pgconn errors of a history read into domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
// Every other failure, including an empty result of a single-row read, is
// reported as domain.ErrStoreUnavailable with the cause kept in the chain.
func MapError(err error, collection string, userID uuid.UUID) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s for user %s: %w", collection, userID, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s for user %s: %w: %s (SQLSTATE %s): %w",
			collection, userID, domain.ErrStoreUnavailable, pgErr.Message, pgErr.Code, err)
	}

	return fmt.Errorf("%s for user %s: %w: %w", collection, userID, domain.ErrStoreUnavailable, err)
}
