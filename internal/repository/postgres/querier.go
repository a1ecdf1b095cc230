package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lalith-99/factorylink/internal/apperr"
)

// Querier is the part of *pgxpool.Pool the stores use. pgxmock pools
// satisfy it too, so stores are testable without a database.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builds queries with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// mapError converts pgx/pgconn errors into apperr sentinels, prefixed
// with op. Context errors and unknown errors are only wrapped.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, apperr.ErrConflict, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, apperr.ErrNotFound, pgErr.ConstraintName)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%s: %w (%s)", op, apperr.ErrValidation, pgErr.ConstraintName)
		case pgerrcode.StringDataRightTruncationDataException:
			// VARCHAR overflow; the service checks lengths first, in runes.
			return fmt.Errorf("%s: %w (%s)", op, apperr.ErrValidation, pgErr.ColumnName)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
