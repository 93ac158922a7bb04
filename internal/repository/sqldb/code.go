package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/folio-server/internal/model"
)

var _ model.CodeStore = (*CodeRepository)(nil)

type CodeRepository struct {
	db *Connection
}

func NewCodeRepository(db *Connection) *CodeRepository {
	return &CodeRepository{
		db: db,
	}
}

func (r *CodeRepository) Create(ctx context.Context, code model.OneTimeCode) error {
	query := `INSERT INTO one_time_codes (id, code, purpose, issued_at, expires_at, used, ip, user_agent)
			  VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		code.ID, code.Code, string(code.Purpose), code.IssuedAt, code.ExpiresAt, code.IP, code.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to create one-time code: %w", err)
	}

	return nil
}

// Consume picks the newest live match and flips it in a single statement. The
// outer used = FALSE guard makes a concurrent loser affect zero rows.
func (r *CodeRepository) Consume(ctx context.Context, code string, purpose model.CodePurpose, now time.Time) (bool, error) {
	query := `UPDATE one_time_codes SET used = TRUE, used_at = $1
			  WHERE id = (
				  SELECT id FROM one_time_codes
				  WHERE code = $2 AND purpose = $3 AND used = FALSE AND expires_at >= $1
				  ORDER BY issued_at DESC
				  LIMIT 1
			  ) AND used = FALSE`

	res, err := r.db.ExecContext(ctx, query, now, code, string(purpose))
	if err != nil {
		return false, fmt.Errorf("failed to consume one-time code: %w", err)
	}

	return affectedOne(res)
}

func (r *CodeRepository) Latest(ctx context.Context, code string, purpose model.CodePurpose) (model.OneTimeCode, error) {
	query := `SELECT id, code, purpose, issued_at, expires_at, used, used_at, ip, user_agent
			  FROM one_time_codes
			  WHERE code = $1 AND purpose = $2
			  ORDER BY issued_at DESC
			  LIMIT 1`

	var (
		rec    model.OneTimeCode
		purp   string
		usedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, code, string(purpose)).Scan(
		&rec.ID, &rec.Code, &purp, &rec.IssuedAt, &rec.ExpiresAt, &rec.Used, &usedAt, &rec.IP, &rec.UserAgent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.OneTimeCode{}, model.ErrNotFound
		}
		return model.OneTimeCode{}, fmt.Errorf("failed to get one-time code: %w", err)
	}

	rec.Purpose = model.CodePurpose(purp)
	if usedAt.Valid {
		t := usedAt.Time
		rec.UsedAt = &t
	}

	return rec, nil
}

func (r *CodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM one_time_codes WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return n, nil
}
