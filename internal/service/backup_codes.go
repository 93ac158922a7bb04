package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// BackupCodeCount is the size of every generated batch.
const BackupCodeCount = 8

// NewBackupCode returns a code of two 4-character upper-case hex groups.
func NewBackupCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate backup code: %w", err)
	}
	return FormatBackupCode(strings.ToUpper(hex.EncodeToString(buf))), nil
}

// FormatBackupCode splits an 8-character code into two hyphenated halves.
func FormatBackupCode(code string) string {
	if len(code) != 8 {
		return code
	}
	return code[:4] + "-" + code[4:]
}

// CanonicalizeBackupCode normalizes user input to the issued XXXX-XXXX form so
// that lower case, stray spaces and a missing hyphen still match.
func CanonicalizeBackupCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return FormatBackupCode(s)
}

func newBackupCodeBatch(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for range n {
		code, err := NewBackupCode()
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}
