package tokens

import (
	"strings"
	"testing"

	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/stretchr/testify/assert"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	secret := []byte("test-secret")
	merchant := &models.Merchant{ID: 42}

	token, err := GenerateAccessToken(secret, 3600, merchant)
	assert.NoError(t, err)

	merchantID, err := ParseToken(secret, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), merchantID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken([]byte("secret-a"), 3600, &models.Merchant{ID: 1})
	assert.NoError(t, err)

	_, err = ParseToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateAccessToken([]byte("secret"), -1, &models.Merchant{ID: 1})
	assert.NoError(t, err)

	_, err = ParseToken([]byte("secret"), token)
	assert.Error(t, err)
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, common.APIKeyPrefix))
	// prefix + 32 random bytes hex encoded
	assert.Equal(t, len(common.APIKeyPrefix)+64, len(key))

	other, err := GenerateAPIKey()
	assert.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestDigestIsStable(t *testing.T) {
	assert.Equal(t, Digest("rav_abc"), Digest("rav_abc"))
	assert.NotEqual(t, Digest("rav_abc"), Digest("rav_abd"))
}
