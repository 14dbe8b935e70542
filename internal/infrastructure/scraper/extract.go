package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/PuerkitoBio/goquery"
)

// Document разбирает html. Парсер терпим к битой разметке.
func Document(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Text возвращает обрезанный текст первого совпадения, nil если совпадения
// нет или текст пустой.
func Text(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	return domain.StrPtr(sel.First().Text())
}

// Attr возвращает обрезанный атрибут первого совпадения, nil если его нет или он пустой.
func Attr(sel *goquery.Selection, name string) *string {
	if sel.Length() == 0 {
		return nil
	}
	v, ok := sel.First().Attr(name)
	if !ok {
		return nil
	}
	return domain.StrPtr(v)
}

// Texts возвращает непустые обрезанные тексты всех совпадений, nil если их нет.
func Texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// Attrs возвращает непустые значения атрибута name по всем совпадениям, nil если их нет.
func Attrs(sel *goquery.Selection, name string) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	})
	return out
}

// Absolute разрешает href относительно base. Абсолютные ссылки не меняются.
func Absolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return base + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return base + href
	}
	return b.ResolveReference(ref).String()
}

// NoBreak заменяет неразрывные пробелы обычными.
func NoBreak(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.StrPtr(strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(*s))
}

// EachNode вызывает fn не более чем для limit совпадений. Узел, на котором fn
// паникует, пропускается и учитывается в возвращаемом значении.
func EachNode(sel *goquery.Selection, limit int, fn func(s *goquery.Selection)) (failed int) {
	nodes := sel
	if limit > 0 && nodes.Length() > limit {
		nodes = nodes.Slice(0, limit)
	}

	nodes.Each(func(_ int, s *goquery.Selection) {
		if err := safeCall(func() { fn(s) }); err != nil {
			failed++
		}
	})
	return failed
}

func safeCall(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node extraction panic: %v", r)
		}
	}()
	fn()
	return nil
}
