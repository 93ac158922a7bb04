package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/folio-server/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

func (r *CredentialRepository) Get(ctx context.Context) (model.AdminCredential, error) {
	var cred model.AdminCredential
	query := `SELECT password_hash, mfa_enabled, recovery_email, created_at, updated_at
			  FROM admin_credentials WHERE id = 1`

	err := r.db.QueryRowContext(ctx, query).Scan(
		&cred.PasswordHash, &cred.MFAEnabled, &cred.RecoveryEmail, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AdminCredential{}, model.ErrNotFound
		}
		return model.AdminCredential{}, fmt.Errorf("failed to get admin credential: %w", err)
	}

	return cred, nil
}

func (r *CredentialRepository) CreateIfAbsent(ctx context.Context, passwordHash string, now time.Time) (bool, error) {
	query := `INSERT INTO admin_credentials (id, password_hash, mfa_enabled, recovery_email, created_at, updated_at)
			  VALUES (1, $1, FALSE, '', $2, $2)
			  ON CONFLICT (id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, passwordHash, now)
	if err != nil {
		return false, fmt.Errorf("failed to create admin credential: %w", err)
	}

	return affectedOne(res)
}

func (r *CredentialRepository) SetPassword(ctx context.Context, passwordHash string, now time.Time) error {
	query := `UPDATE admin_credentials SET password_hash = $1, updated_at = $2 WHERE id = 1`

	res, err := r.db.ExecContext(ctx, query, passwordHash, now)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}

	return nil
}

func (r *CredentialRepository) EnableMFA(ctx context.Context, email string, hashes []string, now time.Time) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE admin_credentials SET mfa_enabled = TRUE, recovery_email = $1, updated_at = $2 WHERE id = 1`,
			email, now)
		if err != nil {
			return fmt.Errorf("failed to enable mfa: %w", err)
		}

		ok, err := affectedOne(res)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrNotFound
		}

		return replaceBackupCodes(ctx, tx, hashes, now)
	})
}

func (r *CredentialRepository) DisableMFA(ctx context.Context, now time.Time) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE admin_credentials SET mfa_enabled = FALSE, recovery_email = '', updated_at = $1 WHERE id = 1`,
			now)
		if err != nil {
			return fmt.Errorf("failed to disable mfa: %w", err)
		}

		ok, err := affectedOne(res)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM admin_backup_codes`); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}

		return nil
	})
}

func (r *CredentialRepository) ReplaceBackupCodes(ctx context.Context, hashes []string, now time.Time) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE admin_credentials SET updated_at = $1 WHERE id = 1`, now); err != nil {
			return fmt.Errorf("failed to touch admin credential: %w", err)
		}

		return replaceBackupCodes(ctx, tx, hashes, now)
	})
}

func (r *CredentialRepository) BackupCodes(ctx context.Context) ([]model.BackupCodeHash, error) {
	query := `SELECT id, position, hash FROM admin_backup_codes ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query backup codes: %w", err)
	}
	defer rows.Close()

	var codes []model.BackupCodeHash
	for rows.Next() {
		var code model.BackupCodeHash
		if err := rows.Scan(&code.ID, &code.Position, &code.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan backup code: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backup codes: %w", err)
	}

	return codes, nil
}

func (r *CredentialRepository) ConsumeBackupCode(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_backup_codes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}

	return affectedOne(res)
}

func replaceBackupCodes(ctx context.Context, tx *sql.Tx, hashes []string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM admin_backup_codes`); err != nil {
		return fmt.Errorf("failed to delete backup codes: %w", err)
	}

	for i, hash := range hashes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO admin_backup_codes (position, hash, created_at) VALUES ($1, $2, $3)`,
			i, hash, now)
		if err != nil {
			return fmt.Errorf("failed to insert backup code: %w", err)
		}
	}

	return nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n == 1, nil
}
