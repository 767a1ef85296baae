package implementation

import (
	"context"

	"concierge-be/internal/entity"
	"concierge-be/internal/mapper"
	"concierge-be/internal/model"
	"concierge-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExchangeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExchangeMapper
}

func NewExchangeRepository(db *gorm.DB) contract.ExchangeRepository {
	return &ExchangeRepositoryImpl{
		db:     db,
		mapper: mapper.NewExchangeMapper(),
	}
}

func (r *ExchangeRepositoryImpl) Create(ctx context.Context, exchange *entity.Exchange) error {
	m := r.mapper.ToModel(exchange)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*exchange = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExchangeRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.Exchange, error) {
	var models []*model.Exchange
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *ExchangeRepositoryImpl) FindBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Exchange, error) {
	var models []*model.Exchange
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *ExchangeRepositoryImpl) toEntities(models []*model.Exchange) []*entity.Exchange {
	out := make([]*entity.Exchange, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ToEntity(m))
	}
	return out
}
