package usecase

import (
	"context"
	"strings"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type AuthResult struct {
	User         *entity.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, errors.Validation("display_name is required", nil)
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, displayName)
	if err != nil {
		logger.Warn("Register failed for %s: %v", input.Email, err)
		return nil, errors.Validation("Could not create account with these credentials", err)
	}

	user := &entity.User{
		ID:          uid,
		Email:       input.Email,
		DisplayName: displayName,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	signIn, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:         user,
		Token:        signIn.IDToken,
		RefreshToken: signIn.RefreshToken,
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	signIn, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		logger.Warn("Login failed: %v", err)
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	user, err := uc.userRepo.GetByID(ctx, signIn.UID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		// Accounts created outside the API have no profile document yet.
		user = &entity.User{ID: signIn.UID, Email: email, DisplayName: signIn.DisplayName}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	return &AuthResult{
		User:         user,
		Token:        signIn.IDToken,
		RefreshToken: signIn.RefreshToken,
	}, nil
}

// RequestPasswordReset never reports whether the email belongs to an account.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	if err := uc.firebaseAuth.SendPasswordResetEmail(ctx, email); err != nil {
		logger.Warn("Password reset email for %s failed: %v", email, err)
	}
	return nil
}

func (uc *AuthUseCase) ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error {
	if oobCode == "" {
		return errors.Validation("Reset link is invalid or expired", nil)
	}
	if err := uc.firebaseAuth.ConfirmPasswordReset(ctx, oobCode, newPassword); err != nil {
		return errors.Validation("Reset link is invalid or expired", err)
	}
	return nil
}
