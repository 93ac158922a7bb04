package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

// Credentials guards the single admin credential. Password writes are
// serialized so a verify-then-set sequence cannot interleave with another.
type Credentials struct {
	store  model.CredentialStore
	hasher model.Hasher
	now    model.Clock
	logger *logger.Logger

	passwordMu sync.Mutex
}

func NewCredentials(store model.CredentialStore, hasher model.Hasher, clock model.Clock, logger *logger.Logger) *Credentials {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Credentials{
		store:  store,
		hasher: hasher,
		now:    clock,
		logger: logger,
	}
}

// Initialize stores a hash of defaultPassword unless a credential already exists.
func (c *Credentials) Initialize(ctx context.Context, defaultPassword string) error {
	_, err := c.store.Get(ctx)
	if err == nil {
		c.logger.Debug("Credential service: admin credential already initialized")
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		c.logger.Error("Credential service: failed to get admin credential",
			"error", err.Error())
		return fmt.Errorf("failed to get admin credential: %w", err)
	}

	if defaultPassword == "" {
		return model.NewInputError("password", "default admin password is empty")
	}

	hash, err := c.hasher.Hash(defaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	created, err := c.store.CreateIfAbsent(ctx, hash, c.now())
	if err != nil {
		c.logger.Error("Credential service: failed to create admin credential",
			"error", err.Error())
		return fmt.Errorf("failed to create admin credential: %w", err)
	}

	if created {
		c.logger.Info("Credential service: admin credential initialized from default password")
	}

	return nil
}

// Get returns the stored credential.
func (c *Credentials) Get(ctx context.Context) (model.AdminCredential, error) {
	cred, err := c.store.Get(ctx)
	if err != nil {
		return model.AdminCredential{}, fmt.Errorf("failed to get admin credential: %w", err)
	}
	return cred, nil
}

// VerifyPassword reports whether candidate matches the stored hash. A missing
// credential is a mismatch, not an error.
func (c *Credentials) VerifyPassword(ctx context.Context, candidate string) (bool, error) {
	cred, err := c.store.Get(ctx)
	if errors.Is(err, model.ErrNotFound) {
		c.logger.Warn("Credential service: password checked before initialization")
		return false, nil
	}
	if err != nil {
		c.logger.Error("Credential service: failed to get admin credential",
			"error", err.Error())
		return false, fmt.Errorf("failed to get admin credential: %w", err)
	}

	ok, err := c.hasher.Compare(cred.PasswordHash, candidate)
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}

	return ok, nil
}

// SetPassword hashes and stores newPassword.
func (c *Credentials) SetPassword(ctx context.Context, newPassword string) error {
	c.passwordMu.Lock()
	defer c.passwordMu.Unlock()

	return c.setPassword(ctx, newPassword)
}

// ReplacePassword stores newPassword only if current matches, as one serialized step.
func (c *Credentials) ReplacePassword(ctx context.Context, current, newPassword string) error {
	c.passwordMu.Lock()
	defer c.passwordMu.Unlock()

	ok, err := c.VerifyPassword(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrInvalidCredentials
	}

	return c.setPassword(ctx, newPassword)
}

func (c *Credentials) setPassword(ctx context.Context, newPassword string) error {
	hash, err := c.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := c.store.SetPassword(ctx, hash, c.now()); err != nil {
		c.logger.Error("Credential service: failed to set password",
			"error", err.Error())
		return fmt.Errorf("failed to set password: %w", err)
	}

	c.logger.Info("Credential service: password updated")

	return nil
}

// EnableMFA turns MFA on with email and a freshly hashed batch.
func (c *Credentials) EnableMFA(ctx context.Context, email string, hashes []string) error {
	if err := c.store.EnableMFA(ctx, email, hashes, c.now()); err != nil {
		c.logger.Error("Credential service: failed to enable mfa",
			"error", err.Error())
		return fmt.Errorf("failed to enable mfa: %w", err)
	}
	return nil
}

// DisableMFA clears the flag, the recovery email and the batch.
func (c *Credentials) DisableMFA(ctx context.Context) error {
	if err := c.store.DisableMFA(ctx, c.now()); err != nil {
		c.logger.Error("Credential service: failed to disable mfa",
			"error", err.Error())
		return fmt.Errorf("failed to disable mfa: %w", err)
	}
	return nil
}

// ReplaceBackupCodes swaps the whole batch atomically.
func (c *Credentials) ReplaceBackupCodes(ctx context.Context, hashes []string) error {
	if err := c.store.ReplaceBackupCodes(ctx, hashes, c.now()); err != nil {
		c.logger.Error("Credential service: failed to replace backup codes",
			"error", err.Error())
		return fmt.Errorf("failed to replace backup codes: %w", err)
	}
	return nil
}

// BackupCodes returns the unused batch in order.
func (c *Credentials) BackupCodes(ctx context.Context) ([]model.BackupCodeHash, error) {
	codes, err := c.store.BackupCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get backup codes: %w", err)
	}
	return codes, nil
}

// ConsumeBackupCodeHash removes one batch entry. It returns false for an id
// that is not in the batch, including one removed by a concurrent caller.
func (c *Credentials) ConsumeBackupCodeHash(ctx context.Context, id int64) (bool, error) {
	ok, err := c.store.ConsumeBackupCode(ctx, id)
	if err != nil {
		c.logger.Error("Credential service: failed to consume backup code",
			"error", err.Error())
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return ok, nil
}
