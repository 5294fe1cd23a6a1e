package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

var ErrNotFound = errors.New("not found")

type SessionRepository interface {
	Add(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}
