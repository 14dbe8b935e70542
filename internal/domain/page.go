package domain

import "time"

// PageKind отличает страницы выдачи от страниц товара.
type PageKind string

const (
	PageSearch PageKind = "search"
	PageDetail PageKind = "detail"
)

// RawPage — загруженный документ в том виде, в каком его вернула сессия браузера.
type RawPage struct {
	Source    string
	Kind      PageKind
	URL       string
	HTML      string
	FetchedAt time.Time
}

func NewRawPage(source string, kind PageKind, url, html string, fetchedAt time.Time) *RawPage {
	return &RawPage{
		Source:    source,
		Kind:      kind,
		URL:       url,
		HTML:      html,
		FetchedAt: fetchedAt,
	}
}
