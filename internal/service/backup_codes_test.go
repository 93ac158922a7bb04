package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backupCodePattern = regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}$`)

func TestNewBackupCode_Format(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		code, err := NewBackupCode()
		require.NoError(t, err)
		assert.Regexp(t, backupCodePattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestCanonicalizeBackupCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "A1B2-C3D4", want: "A1B2-C3D4"},
		{in: "a1b2-c3d4", want: "A1B2-C3D4"},
		{in: "a1b2c3d4", want: "A1B2-C3D4"},
		{in: "  A1B2 C3D4 ", want: "A1B2-C3D4"},
		{in: "A1B2-C3", want: "A1B2C3"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalizeBackupCode(tt.in))
		})
	}
}

func TestNewBackupCodeBatch(t *testing.T) {
	codes, err := newBackupCodeBatch(BackupCodeCount)
	require.NoError(t, err)
	assert.Len(t, codes, 8)
}
