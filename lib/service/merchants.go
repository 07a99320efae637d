package service

import (
	"context"
	"strings"

	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/lib/tokens"
	"golang.org/x/crypto/bcrypt"
)

func (svc *GatewayService) CreateMerchant(ctx context.Context, email, password, walletAddress string) (merchant *models.Merchant, err error) {
	merchant = &models.Merchant{}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	merchant.Email = strings.ToLower(email)
	merchant.Password = string(hashed)
	merchant.WalletAddress = strings.ToLower(walletAddress)

	_, err = svc.DB.NewInsert().Model(merchant).Exec(ctx)
	return merchant, err
}

func (svc *GatewayService) FindMerchant(ctx context.Context, merchantID int64) (*models.Merchant, error) {
	var merchant models.Merchant
	err := svc.DB.NewSelect().Model(&merchant).Where("id = ?", merchantID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (svc *GatewayService) FindMerchantByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := svc.DB.NewSelect().Model(&merchant).Where("email = ?", strings.ToLower(email)).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// GenerateToken checks the merchant's credentials and mints a dashboard JWT.
func (svc *GatewayService) GenerateToken(ctx context.Context, email, password string) (accessToken string, err error) {
	merchant, err := svc.FindMerchantByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(merchant.Password), []byte(password)) != nil {
		return "", bcrypt.ErrMismatchedHashAndPassword
	}
	return tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, merchant)
}

// CreateAPIKey mints a fresh api key for the merchant and stores its digest.
// The returned plain key is shown to the caller exactly once.
func (svc *GatewayService) CreateAPIKey(ctx context.Context, merchantID int64, label string) (plainKey string, key *models.APIKey, err error) {
	plainKey, err = tokens.GenerateAPIKey()
	if err != nil {
		return "", nil, err
	}
	key = &models.APIKey{
		MerchantID: merchantID,
		Digest:     tokens.Digest(plainKey),
		Label:      label,
	}
	_, err = svc.DB.NewInsert().Model(key).Exec(ctx)
	if err != nil {
		return "", nil, err
	}
	return plainKey, key, nil
}

// LookupAPIKey resolves a key digest to the owning merchant, used by the
// auth middleware.
func (svc *GatewayService) LookupAPIKey(ctx context.Context, digest string) (int64, error) {
	var key models.APIKey
	err := svc.DB.NewSelect().Model(&key).Where("digest = ?", digest).Limit(1).Scan(ctx)
	if err != nil {
		return 0, err
	}
	return key.MerchantID, nil
}
