package repository

import (
	"context"

	"dairyDispatch/models"
)

// SessionRepositoryI defines persistence of the logged-in session.
// Load returns (nil, nil) when nothing is stored.
type SessionRepositoryI interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}
