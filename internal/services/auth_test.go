package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/deepstudy/deepstudy-backend/internal/domain"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	as := &authService{
		jwtSecretKey: "test-secret",
		accessTTL:    time.Minute,
	}
	user := &types.User{ID: uuid.New()}

	tok, err := as.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	parsedID, err := as.parseAccessToken(tok)
	if err != nil {
		t.Fatalf("parseAccessToken: %v", err)
	}
	if parsedID != user.ID {
		t.Fatalf("parsed user id = %s, want %s", parsedID, user.ID)
	}
}

func TestAccessTokenWrongKey(t *testing.T) {
	issuer := &authService{jwtSecretKey: "issuer-secret", accessTTL: time.Minute}
	verifier := &authService{jwtSecretKey: "other-secret", accessTTL: time.Minute}

	tok, err := issuer.generateAccessToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	if _, err := verifier.parseAccessToken(tok); err == nil {
		t.Fatalf("expected verification failure with wrong key")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	as := &authService{jwtSecretKey: "test-secret", accessTTL: -time.Minute}

	tok, err := as.generateAccessToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	if _, err := as.parseAccessToken(tok); err == nil {
		t.Fatalf("expected parse failure for expired token")
	}
}
