package usecase

import (
	"context"
	"io"
)

type SignInResult struct {
	UID          string
	IDToken      string
	RefreshToken string
	DisplayName  string
}

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	UpdateUserPassword(ctx context.Context, uid, password string) error
	GetDisplayName(ctx context.Context, uid string) (string, error)
	SignInWithEmailPassword(ctx context.Context, email, password string) (*SignInResult, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error
}

// ImageCompressor shrinks an uploaded picture before it is stored.
type ImageCompressor interface {
	Compress(r io.Reader) ([]byte, error)
}

// ImageStore persists a compressed image and returns the URL items refer to.
type ImageStore interface {
	Store(ctx context.Context, ownerID string, data []byte) (string, error)
}

// RateLimiter throttles user actions. The key is user id plus action.
type RateLimiter interface {
	Allow(userID, action string) bool
}

type NameResolver interface {
	DisplayName(ctx context.Context, userID string) string
	// Forget drops any cached name for the user.
	Forget(userID string)
}

const (
	ActionProposeTrade = "propose_trade"
	ActionSendMessage  = "send_message"
)
