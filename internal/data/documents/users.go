package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmassist/farmassist-backend/internal/docstore"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

type Users struct {
	Model
}

func (u *Users) GetByUsername(ctx context.Context, username string) (map[string]any, error) {
	return u.getOneBy(ctx, "username", username)
}

func (u *Users) GetByEmail(ctx context.Context, email string) (map[string]any, error) {
	return u.getOneBy(ctx, "email", email)
}

func (u *Users) getOneBy(ctx context.Context, field, value string) (map[string]any, error) {
	docs, err := u.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq(field, value)}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("user with %s=%s: %w", field, value, apperr.ErrNotFound)
	}
	return docs[0], nil
}

// Reserve claims a unique username or email with a conditional write on a
// reservation document, so two concurrent registrations cannot both win.
// The kind is "username" or "email".
func (u *Users) Reserve(ctx context.Context, kind, value, userID string) error {
	_, err := u.Model.store.CreateAt(ctx, docstore.UserLookupsCollection, kind+":"+value,
		map[string]any{"user_id": userID, "kind": kind, "value": value})
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return fmt.Errorf("%s %q taken: %w", kind, value, apperr.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// ReleaseReservation undoes a Reserve, used when the second half of a
// two-key registration fails.
func (u *Users) ReleaseReservation(ctx context.Context, kind, value string) error {
	return u.Model.store.Delete(ctx, docstore.UserLookupsCollection, kind+":"+value)
}
