package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Product — каноническая запись, в которую отображается товар любой площадки.
// nil-указатели, срезы и мапы означают "не извлечено".
type Product struct {
	Source              string            `json:"source"`
	ProductID           *string           `json:"product_id,omitempty" validate:"required"`
	Name                *string           `json:"name,omitempty" validate:"required"`
	Price               *string           `json:"price,omitempty" validate:"required"`
	URL                 *string           `json:"url,omitempty" validate:"required"`
	MainPhoto           *string           `json:"main_photo,omitempty"`
	Description         *string           `json:"description,omitempty"`
	PriceWithProtection *string           `json:"price_with_protection,omitempty"`
	Categories          []string          `json:"categories,omitempty"`
	DetailedPhotos      []string          `json:"detailed_photos,omitempty"`
	Condition           *string           `json:"condition,omitempty"`
	Sizes               *Sizes            `json:"sizes,omitempty"`
	DeliveryPrice       *string           `json:"delivery_price,omitempty"`
	Stock               *bool             `json:"stock,omitempty"`
	IsExclusive         *bool             `json:"is_exclusive,omitempty"`
	Rating              *string           `json:"rating,omitempty"`
	Brand               *string           `json:"brand,omitempty"`
	Colors              *Colors           `json:"colors,omitempty"`
	Views               *int64            `json:"views,omitempty"`
	Interested          *int64            `json:"interested,omitempty"`
	Uploaded            *Uploaded         `json:"uploaded,omitempty"`
	PaymentMethods      *string           `json:"payment_methods,omitempty"`
	OwnerName           *string           `json:"owner_name,omitempty"`
	OwnerProfileURL     *string           `json:"owner_profile_url,omitempty"`
	FeatureTable        map[string]string `json:"feature_table,omitempty"`
	FeatureBullet       []string          `json:"feature_bullet,omitempty"`
}

// NewProduct возвращает пустую запись для source.
func NewProduct(source string) *Product {
	return &Product{Source: source}
}

// Validate проверяет наличие url, product_id, name и price.
func (p *Product) Validate() error {
	return validate.Struct(p)
}

// IsValid — Validate в виде предиката.
func (p *Product) IsValid() bool {
	return p.Validate() == nil
}

// MissingFields перечисляет json-имена отсутствующих обязательных полей.
func (p *Product) MissingFields() []string {
	var missing []string
	if p.URL == nil {
		missing = append(missing, "url")
	}
	if p.ProductID == nil {
		missing = append(missing, "product_id")
	}
	if p.Name == nil {
		missing = append(missing, "name")
	}
	if p.Price == nil {
		missing = append(missing, "price")
	}
	return missing
}

// Key возвращает ключ дедупликации. У невалидных записей ProductID может быть nil.
func (p *Product) Key() DedupKey {
	return DedupKey{Source: p.Source, ProductID: Deref(p.ProductID)}
}

func (p *Product) String() string {
	return fmt.Sprintf("%s-%s-%s-%s", p.Source, Deref(p.ProductID), Deref(p.Price), Deref(p.Name))
}

// DedupKey идентифицирует один товар между сборами.
type DedupKey struct {
	Source    string `json:"source"`
	ProductID string `json:"product_id"`
}

func NewDedupKey(source, productID string) DedupKey {
	return DedupKey{Source: source, ProductID: productID}
}

func (k DedupKey) String() string {
	return k.Source + ":" + k.ProductID
}

// IsZero сообщает, что одна из частей ключа пуста.
func (k DedupKey) IsZero() bool {
	return k.Source == "" || k.ProductID == ""
}

// Ptr возвращает указатель на v.
func Ptr[T any](v T) *T {
	return &v
}

// StrPtr возвращает nil для пустой строки, иначе указатель на обрезанное значение.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref возвращает значение по указателю или нулевое значение.
func Deref[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}
