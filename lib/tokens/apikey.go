package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/anvahreal/ravgateway/common"
)

// APIKeyLookup resolves a key digest to the owning merchant id.
type APIKeyLookup func(ctx context.Context, digest string) (int64, error)

// GenerateAPIKey returns a new plain api key. Only its digest is persisted.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return common.APIKeyPrefix + hex.EncodeToString(raw), nil
}

func Digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
