package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/dukerupert/pantry/internal/domain"
)

// UserRepository implements domain.UserRepository. Documents are keyed by
// the Firebase Auth uid.
type UserRepository struct {
	client *firestore.Client
}

var _ domain.UserRepository = (*UserRepository)(nil)

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	var u domain.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	u.ID = snap.Ref.ID
	return &u, nil
}

func (r *UserRepository) SaveUser(ctx context.Context, u *domain.User) error {
	_, err := r.client.Collection(usersCollection).Doc(u.ID).Set(ctx, u)
	return err
}
