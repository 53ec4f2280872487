package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUserToken(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, accessToken string) *types.UserToken {
	tb.Helper()
	ut := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: accessToken + "-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := tx.WithContext(ctx).Create(ut).Error; err != nil {
		tb.Fatalf("seed user token: %v", err)
	}
	return ut
}

func SeedTurnLog(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, nodeID string) *types.TurnLog {
	tb.Helper()
	row := &types.TurnLog{
		ID:     uuid.New(),
		UserID: userID,
		NodeID: nodeID,
		Query:  "什么是 Schur 分解？",
		Answer: "Schur 分解是……",
		Intent: "concept",
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed turn log: %v", err)
	}
	return row
}
