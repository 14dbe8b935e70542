package converter

import "time"

// DocumentModel представляет запись таблицы products_scraping.
type DocumentModel struct {
	ID        int64      `db:"id"`
	Source    string     `db:"source"`
	ProductID string     `db:"product_id"`
	Doc       []byte     `db:"doc"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	Source      string     `db:"source"`
	ProductID   string     `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
