package contract

import (
	"context"

	"concierge-be/internal/entity"

	"github.com/google/uuid"
)

type ExchangeRepository interface {
	Create(ctx context.Context, exchange *entity.Exchange) error
	FindRecent(ctx context.Context, limit int) ([]*entity.Exchange, error)
	FindBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Exchange, error)
}
