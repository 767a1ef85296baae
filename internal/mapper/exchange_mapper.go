package mapper

import (
	"encoding/json"
	"time"

	"concierge-be/internal/entity"
	"concierge-be/internal/model"

	"gorm.io/datatypes"
)

type ExchangeMapper struct{}

func NewExchangeMapper() *ExchangeMapper {
	return &ExchangeMapper{}
}

func (m *ExchangeMapper) ToModel(e *entity.Exchange) *model.Exchange {
	if e == nil {
		return nil
	}

	categories, _ := json.Marshal(e.Categories)
	if e.Categories == nil {
		categories = []byte("[]")
	}

	return &model.Exchange{
		Id:            e.Id,
		SessionId:     e.SessionId,
		Origin:        string(e.Origin),
		Backend:       e.Backend,
		Status:        string(e.Status),
		AssistantName: e.AssistantName,
		Categories:    datatypes.JSON(categories),
		UserMessage:   e.UserMessage,
		Reply:         e.Reply,
		ErrorMessage:  e.ErrorMessage,
		PromptDigest:  e.PromptDigest,
		DurationMs:    e.Duration.Milliseconds(),
		CreatedAt:     e.CreatedAt,
	}
}

func (m *ExchangeMapper) ToEntity(mod *model.Exchange) *entity.Exchange {
	if mod == nil {
		return nil
	}

	var categories []string
	if len(mod.Categories) > 0 {
		_ = json.Unmarshal(mod.Categories, &categories)
	}

	return &entity.Exchange{
		Id:            mod.Id,
		SessionId:     mod.SessionId,
		Origin:        entity.ExchangeOrigin(mod.Origin),
		Backend:       mod.Backend,
		Status:        entity.ExchangeStatus(mod.Status),
		AssistantName: mod.AssistantName,
		Categories:    categories,
		UserMessage:   mod.UserMessage,
		Reply:         mod.Reply,
		ErrorMessage:  mod.ErrorMessage,
		PromptDigest:  mod.PromptDigest,
		Duration:      time.Duration(mod.DurationMs) * time.Millisecond,
		CreatedAt:     mod.CreatedAt,
	}
}
