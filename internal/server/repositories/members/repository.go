package members

import (
	"context"

	"github.com/dmitrijs2005/boardingpass/internal/server/models"
)

// Repository persists allow-list members. Lookups return
// common.ErrorNotFound when no member matches.
type Repository interface {
	Create(ctx context.Context, m *models.Member) error
	// FindByHandles matches either handle; empty handles never match.
	FindByHandles(ctx context.Context, twitter, discord string) (*models.Member, error)
	FindByTwitterID(ctx context.Context, twitterID string) (*models.Member, error)
	FindByTwitter(ctx context.Context, twitter string) (*models.Member, error)
	FindByAddress(ctx context.Context, address string) (*models.Member, error)
	// UpdateProfile stores the verified handles and provider ids.
	UpdateProfile(ctx context.Context, m *models.Member) error
	UpdateHandles(ctx context.Context, m *models.Member) error
	SetAddress(ctx context.Context, id, address string) error
}
