package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/dailydiet/internal/common"
)

const refreshTokenBytes = 32

// TokenGenerator produces refresh token values. Only the digest returned
// alongside the value is ever persisted.
type TokenGenerator interface {
	New() (value string, hash string, err error)
}

type RandomTokenGenerator struct{}

func (RandomTokenGenerator) New() (string, string, error) {
	value, err := common.MakeRandURLString(refreshTokenBytes)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return value, HashRefreshToken(value), nil
}

// HashRefreshToken returns the hex SHA-256 digest of a refresh token value.
func HashRefreshToken(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}
