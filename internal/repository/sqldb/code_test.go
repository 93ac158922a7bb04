package sqldb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/folio-server/database"
	"github.com/dtroode/folio-server/internal/model"
)

func issueCode(t *testing.T, repo *CodeRepository, code string, purpose model.CodePurpose, issuedAt time.Time) {
	t.Helper()

	err := repo.Create(context.Background(), model.OneTimeCode{
		ID:        uuid.New(),
		Code:      code,
		Purpose:   purpose,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(model.CodeTTL),
		IP:        "203.0.113.7",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
}

func TestCodeRepository_Consume(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		code     string
		purpose  model.CodePurpose
		now      time.Time
		expected bool
	}{
		{
			name:     "matching code before expiry",
			code:     "123456",
			purpose:  model.PurposeLogin,
			now:      issued.Add(time.Minute),
			expected: true,
		},
		{
			name:     "exactly at expiry",
			code:     "123456",
			purpose:  model.PurposeLogin,
			now:      issued.Add(model.CodeTTL),
			expected: true,
		},
		{
			name:     "one second after expiry",
			code:     "123456",
			purpose:  model.PurposeLogin,
			now:      issued.Add(model.CodeTTL + time.Second),
			expected: false,
		},
		{
			name:     "wrong purpose",
			code:     "123456",
			purpose:  model.PurposePasswordReset,
			now:      issued.Add(time.Minute),
			expected: false,
		},
		{
			name:     "wrong code",
			code:     "654321",
			purpose:  model.PurposeLogin,
			now:      issued.Add(time.Minute),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewCodeRepository(newTestConnection(t))
			issueCode(t, repo, "123456", model.PurposeLogin, issued)

			ok, err := repo.Consume(context.Background(), tt.code, tt.purpose, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestCodeRepository_Consume_SingleUse(t *testing.T) {
	repo := NewCodeRepository(newTestConnection(t))
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issueCode(t, repo, "111111", model.PurposePasswordReset, issued)

	now := issued.Add(2 * time.Minute)
	ok, err := repo.Consume(ctx, "111111", model.PurposePasswordReset, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "111111", model.PurposePasswordReset, now)
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := repo.Latest(ctx, "111111", model.PurposePasswordReset)
	require.NoError(t, err)
	assert.True(t, rec.Used)
	require.NotNil(t, rec.UsedAt)
	assert.WithinDuration(t, now, *rec.UsedAt, time.Second)
	assert.Equal(t, "203.0.113.7", rec.IP)
}

func TestCodeRepository_Consume_Concurrent(t *testing.T) {
	repo := NewCodeRepository(newTestConnection(t))
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issueCode(t, repo, "222222", model.PurposeLogin, issued)

	const attempts = 16
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Consume(context.Background(), "222222", model.PurposeLogin, issued.Add(time.Minute))
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestCodeRepository_Latest_NotFound(t *testing.T) {
	repo := NewCodeRepository(newTestConnection(t))

	_, err := repo.Latest(context.Background(), "000000", model.PurposeSetup)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCodeRepository_DeleteExpiredBefore(t *testing.T) {
	repo := NewCodeRepository(newTestConnection(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issueCode(t, repo, "100001", model.PurposeLogin, base)
	issueCode(t, repo, "100002", model.PurposeLogin, base.Add(time.Hour))

	n, err := repo.DeleteExpiredBefore(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Latest(ctx, "100001", model.PurposeLogin)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = repo.Latest(ctx, "100002", model.PurposeLogin)
	require.NoError(t, err)
}

func TestCodeRepository_Consume_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCodeRepository(Wrap(db, database.DriverPostgres))
	mock.ExpectExec("UPDATE one_time_codes").WillReturnError(errors.New("connection reset"))

	ok, err := repo.Consume(context.Background(), "123456", model.PurposeLogin, time.Now())
	require.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
