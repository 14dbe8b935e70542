package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
)

// DocumentConverter преобразует документы между domain и записью products_scraping.
type DocumentConverter struct{}

func (DocumentConverter) ToModel(entity *domain.Document) (*DocumentModel, error) {
	doc, err := json.Marshal(entity.Fields)
	if err != nil {
		return nil, err
	}

	return &DocumentModel{
		ID:        entity.ID,
		Source:    entity.Key.Source,
		ProductID: entity.Key.ProductID,
		Doc:       doc,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}, nil
}

func (DocumentConverter) ToEntity(model *DocumentModel) (*domain.Document, error) {
	fields := domain.Fields{}
	if len(model.Doc) > 0 {
		if err := json.Unmarshal(model.Doc, &fields); err != nil {
			return nil, err
		}
	}

	return &domain.Document{
		ID:        model.ID,
		Key:       domain.NewDedupKey(model.Source, model.ProductID),
		Fields:    fields,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// OutboxEventConverter преобразует события outbox между usecase и записью outbox_events.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		Source:      entity.Key.Source,
		ProductID:   entity.Key.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		Key:         domain.NewDedupKey(model.Source, model.ProductID),
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, c.ToEntity(m))
	}
	return out
}
