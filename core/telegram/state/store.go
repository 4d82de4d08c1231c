package state

import "context"

// Store persists one session value per user.
// Get reports false when the user has no session.
type Store[T any] interface {
	Get(ctx context.Context, userID int64) (T, bool, error)
	Put(ctx context.Context, userID int64, session T) error
	Clear(ctx context.Context, userID int64) error
}
