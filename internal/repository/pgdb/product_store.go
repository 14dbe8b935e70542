package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

const documentColumns = `id, source, product_id, doc, created_at, updated_at`

// ProductStore хранит документы товаров строками JSONB с ключом (source, product_id).
// Вызовы присоединяются к транзакции из ctx, если она есть.
type ProductStore struct {
	db   PoolProvider
	conv converter.DocumentConverter
}

func NewProductStore(db PoolProvider) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) querier(ctx context.Context) (tr.Querier, error) {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx, nil
	}

	pool, err := s.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *ProductStore) FindOne(ctx context.Context, key domain.DedupKey) (*domain.Document, error) {
	q, err := s.querier(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT ` + documentColumns + `
		FROM products_scraping
		WHERE source = $1 AND product_id = $2`

	var model converter.DocumentModel
	err = q.QueryRow(ctx, query, key.Source, key.ProductID).Scan(
		&model.ID, &model.Source, &model.ProductID, &model.Doc, &model.CreatedAt, &model.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.ErrProductNotFound
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	doc, err := s.conv.ToEntity(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return doc, nil
}

// Find возвращает документы, подходящие под filter, в порядке вставки.
func (s *ProductStore) Find(ctx context.Context, filter usecase.ProductFilter, page usecase.Page) ([]*domain.Document, error) {
	q, err := s.querier(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	where, args := buildFilter(filter)
	query := `SELECT ` + documentColumns + ` FROM products_scraping`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}
	defer rows.Close()

	result := make([]*domain.Document, 0)
	for rows.Next() {
		var model converter.DocumentModel
		if err := rows.Scan(
			&model.ID, &model.Source, &model.ProductID, &model.Doc, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		doc, err := s.conv.ToEntity(&model)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return result, nil
}

func (s *ProductStore) Insert(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	q, err := s.querier(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := s.conv.ToModel(doc)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO products_scraping (source, product_id, doc)
		VALUES ($1, $2, $3::jsonb)
		RETURNING id, created_at
	`

	if err := q.QueryRow(ctx, query, model.Source, model.ProductID, model.Doc).
		Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: product %s already exists", whereami.WhereAmI(), doc.Key)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return s.conv.ToEntity(model)
}

// UpdateFields сливает diff с сохранённым документом оператором jsonb ||.
func (s *ProductStore) UpdateFields(ctx context.Context, key domain.DedupKey, diff domain.Fields) error {
	q, err := s.querier(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := s.conv.ToModel(domain.NewDocument(key, diff))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products_scraping
		SET doc = doc || $3::jsonb, updated_at = NOW()
		WHERE source = $1 AND product_id = $2
	`

	tag, err := q.Exec(ctx, query, key.Source, key.ProductID, model.Doc)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), storeErr(err))
	}
	if tag.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

func buildFilter(filter usecase.ProductFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Source != "" {
		add("source = $%d", filter.Source)
	}
	if filter.Brand != "" {
		add("doc->>'brand' = $%d", filter.Brand)
	}
	if filter.Condition != "" {
		add("doc->>'condition' = $%d", filter.Condition)
	}
	if filter.NameContains != "" {
		add("strpos(lower(doc->>'name'), lower($%d)) > 0", filter.NameContains)
	}
	if filter.DescriptionContains != "" {
		add("strpos(lower(doc->>'description'), lower($%d)) > 0", filter.DescriptionContains)
	}

	return where, args
}
