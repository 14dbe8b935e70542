package amazon

import (
	"net/url"
	"strings"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/scraper"
	"github.com/PuerkitoBio/goquery"
)

const (
	Platform = "amazon"
	BaseURL  = "https://www.amazon.fr"

	listingItem  = `div[data-component-type="s-search-result"]`
	detailReady  = "#navFooter"
	exclusiveTag = "Exclusivité Amazon"
)

var unavailableMarkers = []string{"indisponible", "unavailable"}

func SearchURL(query string) string {
	v := url.Values{}
	v.Set("k", query)
	v.Set("ref", "nb_sb_noss")
	return BaseURL + "/s?" + v.Encode()
}

// ParseListing извлекает до limit результатов поиска в порядке страницы. Второе
// значение считает узлы, которые не удалось разобрать.
func ParseListing(html string, limit int) ([]*domain.Product, int) {
	doc, err := scraper.Document(html)
	if err != nil {
		return nil, 0
	}

	var out []*domain.Product
	failed := scraper.EachNode(doc.Find(listingItem), limit, func(s *goquery.Selection) {
		out = append(out, parseItem(s))
	})

	return out, failed
}

func parseItem(s *goquery.Selection) *domain.Product {
	p := domain.NewProduct(Platform)
	p.ProductID = scraper.Attr(s, "data-asin")
	p.Name = scraper.Text(s.Find("h2"))
	if href := scraper.Attr(s.Find("a.a-link-normal"), "href"); href != nil {
		p.URL = domain.StrPtr(scraper.Absolute(BaseURL, *href))
	}
	p.MainPhoto = scraper.Attr(s.Find("img.s-image"), "src")
	p.Price = scraper.Text(s.Find("span.a-offscreen"))
	p.Rating = scraper.Text(s.Find("span.a-icon-alt"))
	p.IsExclusive = domain.Ptr(strings.Contains(s.Find("span.a-badge-text").First().Text(), exclusiveTag))
	p.DeliveryPrice = deliveryPrice(s.Find(`div[data-cy="delivery-recipe"]`))

	unavailable := s.Find(".s-item__out-of-stock").Length() > 0 ||
		hasMarker(s.Find("span.a-badge-text, span.a-color-price").Text())
	p.Stock = domain.Ptr(!unavailable)

	return p
}

// deliveryPrice отбрасывает два первых слова строки доставки и склеивает
// остаток, например "Livraison à 4,99 € jeudi" → "4,99€jeudi".
func deliveryPrice(sel *goquery.Selection) *string {
	text := scraper.Text(sel)
	if text == nil {
		return nil
	}
	words := strings.Split(*text, " ")
	if len(words) <= 2 {
		return nil
	}
	return domain.StrPtr(strings.Join(words[2:], ""))
}

// ParseDetail разбирает страницу товара. Возвращает nil, только если html не разобрать.
func ParseDetail(html string, _ time.Time) *domain.Product {
	doc, err := scraper.Document(html)
	if err != nil {
		return nil
	}

	p := domain.NewProduct(Platform)
	p.URL = scraper.Attr(doc.Find(`link[rel="canonical"]`), "href")

	p.ProductID = scraper.Attr(doc.Find("#all-offers-display-params"), "data-asin")
	if p.ProductID == nil {
		p.ProductID = scraper.Attr(doc.Find(`input[name="ASIN"]`), "value")
	}

	p.Price = scraper.Text(doc.Find(`div[id*="corePrice"] .a-offscreen, div[id*="corePrice"] .aok-offscreen`))
	p.Categories = scraper.Texts(doc.Find("#wayfinding-breadcrumbs_feature_div a"))
	p.Name = scraper.Text(doc.Find("#productTitle"))
	p.Description = scraper.Text(doc.Find("#productDescription p"))
	p.Brand = brand(scraper.Text(doc.Find("#bylineInfo")))
	p.Rating = scraper.Attr(doc.Find("#acrPopover"), "title")
	p.FeatureBullet = scraper.Texts(doc.Find("#feature-bullets li span.a-list-item"))

	photos := append(
		scraper.Attrs(doc.Find("#main-image-container img"), "src"),
		scraper.Attrs(doc.Find("#altImages img"), "src")...,
	)
	if len(photos) > 0 {
		p.DetailedPhotos = photos
	}

	table := doc.Find("#productDetails_feature_div table").First()
	if table.Length() == 0 {
		table = doc.Find("#prodDetails table").First()
	}
	p.FeatureTable = featureTable(table)

	swatches := make(map[string]string)
	doc.Find("#variation_color_name ul img").Each(func(_ int, img *goquery.Selection) {
		if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
			swatches[alt] = strings.TrimSpace(img.AttrOr("src", ""))
		}
	})
	if len(swatches) > 0 {
		p.Colors = domain.ColorImages(swatches)
	}

	p.Stock = domain.Ptr(!hasMarker(doc.Find("#availability").Text()))

	return p
}

// featureTable сопоставляет ячейки заголовков таблицы с ячейками данных.
func featureTable(table *goquery.Selection) map[string]string {
	if table.Length() == 0 {
		return nil
	}

	headers := make([]string, 0)
	table.Find("th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(s.Text()))
	})
	values := make([]string, 0)
	table.Find("td").Each(func(_ int, s *goquery.Selection) {
		values = append(values, strings.TrimSpace(s.Text()))
	})

	out := make(map[string]string)
	for i := 0; i < len(headers) && i < len(values); i++ {
		if headers[i] != "" {
			out[headers[i]] = values[i]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var bylinePrefixes = []string{"Visiter la boutique ", "Visit the ", "Marque : ", "Marque\u00a0: ", "Brand: "}

func brand(byline *string) *string {
	if byline == nil {
		return nil
	}
	b := *byline
	for _, prefix := range bylinePrefixes {
		b = strings.TrimPrefix(b, prefix)
	}
	b = strings.TrimSuffix(b, " Store")
	return domain.StrPtr(b)
}

func hasMarker(text string) bool {
	text = strings.ToLower(text)
	for _, m := range unavailableMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
