package usecase

import (
	"context"
	"strings"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	names        NameResolver
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, names NameResolver) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		names:        names,
	}
}

// PublicProfile is what other users may see about someone.
type PublicProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	if userID == "" {
		return nil, errors.Validation("user id is required", nil)
	}
	return &PublicProfile{
		ID:          userID,
		DisplayName: uc.names.DisplayName(ctx, userID),
	}, nil
}

// UpdateDisplayName changes the name in Firebase Auth and on the profile.
// Trade requests keep the name they were created with.
func (uc *UserUseCase) UpdateDisplayName(ctx context.Context, userID, displayName string) (*entity.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errors.Validation("display_name is required", nil)
	}

	if err := uc.firebaseAuth.UpdateDisplayName(ctx, userID, displayName); err != nil {
		return nil, errors.Internal("Failed to update display name", err)
	}
	if err := uc.userRepo.UpdateDisplayName(ctx, userID, displayName); err != nil {
		return nil, err
	}
	uc.names.Forget(userID)

	return uc.userRepo.GetByID(ctx, userID)
}

// UpdatePassword re-checks the current password before setting the new one.
func (uc *UserUseCase) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	signIn, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, user.Email, currentPassword)
	if err != nil || signIn.UID != userID {
		return errors.Unauthorized("Current password is incorrect", err)
	}

	if err := uc.firebaseAuth.UpdateUserPassword(ctx, userID, newPassword); err != nil {
		return errors.Internal("Failed to update password", err)
	}

	logger.Info("Password updated for user %s", userID)
	return nil
}
