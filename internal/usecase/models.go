package usecase

import (
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
)

// AllPlatforms выбирает все зарегистрированные адаптеры.
const AllPlatforms = "all"

// SCRAPING

// SearchReq — поиск по Platforms (пусто или "all" означает все адаптеры).
type SearchReq struct {
	Query     string
	Limit     int
	Platforms []string
}

func NewSearchReq(query string, limit int, platforms []string) *SearchReq {
	return &SearchReq{Query: query, Limit: limit, Platforms: platforms}
}

// BatchSearchReq — по одному fan-out на запрос с объединением результатов.
type BatchSearchReq struct {
	Queries   []string
	Limit     int
	Platforms []string
}

func NewBatchSearchReq(queries []string, limit int, platforms []string) *BatchSearchReq {
	return &BatchSearchReq{Queries: queries, Limit: limit, Platforms: platforms}
}

// FanOutResult содержит записи и ошибки по каждой площадке.
type FanOutResult struct {
	Results map[string][]domain.Product `json:"results"`
	Errors  map[string]string           `json:"errors"`
}

func NewFanOutResult() *FanOutResult {
	return &FanOutResult{
		Results: make(map[string][]domain.Product),
		Errors:  make(map[string]string),
	}
}

// BACKFILL

type BackfillError struct {
	Key    domain.DedupKey `json:"key"`
	URL    string          `json:"url,omitempty"`
	Reason string          `json:"reason"`
}

type BackfillReport struct {
	Completed int             `json:"completed"`
	Errors    []BackfillError `json:"errors"`
}

func NewBackfillReport() *BackfillReport {
	return &BackfillReport{Errors: make([]BackfillError, 0)}
}

func (r *BackfillReport) fail(key domain.DedupKey, url, reason string) {
	r.Errors = append(r.Errors, BackfillError{Key: key, URL: url, Reason: reason})
}

// QUERIES

// ProductFilter объединяет точные и подстрочные условия; пустые поля игнорируются.
type ProductFilter struct {
	Source              string
	Brand               string
	Condition           string
	NameContains        string
	DescriptionContains string
}

// Page — окно смещения в порядке хранилища. Limit 0 означает без ограничения.
type Page struct {
	Offset int
	Limit  int
}

// NewPage переводит номер страницы (с 1) в окно смещения.
func NewPage(page, pageSize int) Page {
	return Page{Offset: (page - 1) * pageSize, Limit: pageSize}
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const (
	EventProductInserted = "product.inserted"
	EventProductUpdated  = "product.updated"
)

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	Key         domain.DedupKey
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewOutboxEvent(eventID, eventType string, key domain.DedupKey, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		Key:       key,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}

// ProductChangeEvent — полезная нагрузка события о вставке или обновлении товара.
type ProductChangeEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Key        domain.DedupKey `json:"key"`
	Changed    []string        `json:"changed"`
	Product    *domain.Product `json:"product"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, Payload: payload}
}
