package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"time"
)

// Fields — хранимая форма товара: имя json-поля → закодированное значение.
// Отсутствующий ключ означает null.
type Fields map[string]json.RawMessage

// FieldsOf кодирует непустые поля p.
func FieldsOf(p *Product) (Fields, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	for k, v := range f {
		if isNull(v) {
			delete(f, k)
		}
	}

	return f, nil
}

// Product декодирует поля обратно в Product.
func (f Fields) Product() (*Product, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// Diff возвращает входящие поля, которые не null и отличаются от f.
func (f Fields) Diff(incoming Fields) Fields {
	diff := Fields{}
	for k, v := range incoming {
		if isNull(v) {
			continue
		}
		if stored, ok := f[k]; ok && jsonEqual(stored, v) {
			continue
		}
		diff[k] = v
	}
	return diff
}

// Merge возвращает копию f с наложенным patch.
func (f Fields) Merge(patch Fields) Fields {
	merged := make(Fields, len(f)+len(patch))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// Names возвращает отсортированные имена полей.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// jsonEqual сравнивает декодированные значения без учёта форматирования и порядка ключей.
func jsonEqual(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}

	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false
	}

	return reflect.DeepEqual(va, vb)
}

// Document — сохранённый товар со служебными колонками.
type Document struct {
	ID        int64
	Key       DedupKey
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewDocument(key DedupKey, fields Fields) *Document {
	return &Document{Key: key, Fields: fields}
}

// UpsertOutcome — что движок upsert сделал с записью.
type UpsertOutcome string

const (
	OutcomeInserted  UpsertOutcome = "inserted"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeUnchanged UpsertOutcome = "unchanged"
)

// UpsertResult содержит исход, запись после слияния и имена изменённых полей.
type UpsertResult struct {
	Outcome UpsertOutcome
	Product *Product
	Changed []string
}

func NewUpsertResult(outcome UpsertOutcome, product *Product, changed []string) *UpsertResult {
	return &UpsertResult{Outcome: outcome, Product: product, Changed: changed}
}
