package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Persistence("Failed to create user profile", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Persistence("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Persistence("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

func (r *firestoreUserRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	logger.Info("Updating display name for user %s", id)

	_, err := r.client.Collection(usersCollection).Doc(id).Set(ctx, map[string]interface{}{
		"displayName": displayName,
		"updatedAt":   time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return errors.Persistence("Failed to update user", err)
	}
	return nil
}
