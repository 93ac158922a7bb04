package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

const (
	codeMin   = 100000
	codeRange = 900000

	// codeRetention keeps consumed and expired codes around for diagnosis.
	codeRetention = 24 * time.Hour
)

// Codes issues and consumes emailed one-time codes.
type Codes struct {
	store  model.CodeStore
	ttl    time.Duration
	now    model.Clock
	logger *logger.Logger
}

func NewCodes(store model.CodeStore, ttl time.Duration, clock model.Clock, logger *logger.Logger) *Codes {
	if clock == nil {
		clock = model.SystemClock
	}
	if ttl <= 0 {
		ttl = model.CodeTTL
	}
	return &Codes{
		store:  store,
		ttl:    ttl,
		now:    clock,
		logger: logger,
	}
}

// TTL returns how long an issued code stays valid.
func (c *Codes) TTL() time.Duration {
	return c.ttl
}

// Issue generates and persists a fresh code for purpose.
func (c *Codes) Issue(ctx context.Context, purpose model.CodePurpose, client model.ClientInfo) (string, error) {
	if !purpose.Valid() {
		return "", model.NewInputError("purpose", "unknown code purpose")
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	now := c.now()
	rec := model.OneTimeCode{
		ID:        uuid.New(),
		Code:      code,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
		IP:        client.IP,
		UserAgent: client.UserAgent,
	}

	if err := c.store.Create(ctx, rec); err != nil {
		c.logger.Error("Code service: failed to store code",
			"purpose", string(purpose),
			"error", err.Error())
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	c.logger.Debug("Code service: code issued",
		"code_id", rec.ID,
		"purpose", string(purpose),
		"expires_at", rec.ExpiresAt)

	if _, err := c.Prune(ctx, codeRetention); err != nil {
		c.logger.Warn("Code service: failed to prune old codes",
			"error", err.Error())
	}

	return code, nil
}

// TryConsume marks a matching live code as used. On failure the returned error
// tells why (ErrCodeInvalid, ErrCodeExpired, ErrCodeUsed); callers facing
// clients collapse these into one message.
func (c *Codes) TryConsume(ctx context.Context, code string, purpose model.CodePurpose) error {
	if code == "" || !purpose.Valid() {
		return model.ErrCodeInvalid
	}

	now := c.now()
	ok, err := c.store.Consume(ctx, code, purpose, now)
	if err != nil {
		c.logger.Error("Code service: failed to consume code",
			"purpose", string(purpose),
			"error", err.Error())
		return fmt.Errorf("failed to consume code: %w", err)
	}
	if ok {
		return nil
	}

	return c.diagnose(ctx, code, purpose, now)
}

// Prune deletes codes that expired more than olderThan ago.
func (c *Codes) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := c.store.DeleteExpiredBefore(ctx, c.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to prune codes: %w", err)
	}
	return n, nil
}

func (c *Codes) diagnose(ctx context.Context, code string, purpose model.CodePurpose, now time.Time) error {
	rec, err := c.store.Latest(ctx, code, purpose)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.ErrCodeInvalid
	case err != nil:
		c.logger.Warn("Code service: failed to diagnose rejected code",
			"purpose", string(purpose),
			"error", err.Error())
		return model.ErrCodeInvalid
	case rec.Used:
		return model.ErrCodeUsed
	case now.After(rec.ExpiresAt):
		return model.ErrCodeExpired
	default:
		return model.ErrCodeInvalid
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
