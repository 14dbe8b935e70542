package vinted

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/domain"
	"github.com/DRSN-tech/scrape-ingest/internal/infrastructure/scraper"
	"github.com/PuerkitoBio/goquery"
)

const (
	Platform = "vinted"
	BaseURL  = "https://www.vinted.fr"

	listingItem = "div.feed-grid__item-content"
	detailReady = "aside"

	detailsContainer = "aside div.details-list.details-list--details"
	ownerLink        = "aside a.web_ui__Cell__cell.web_ui__Cell__navigating.web_ui__Cell__link"
)

// itemID выделяет числовой id в начале слага объявления, например "4123456789-robe-ete".
var itemID = regexp.MustCompile(`^(\d+)`)

func SearchURL(query string) string {
	v := url.Values{}
	v.Set("search_text", query)
	v.Set("order", "newest_first")
	return BaseURL + "/catalog?" + v.Encode()
}

// ParseListing извлекает до limit карточек каталога в порядке страницы. Второе
// значение считает карточки, которые не удалось разобрать.
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

	// data-testid="product-item-id-4123456789--overlay-link"
	if testID := scraper.Attr(s.Find(`[data-testid*="product-item-id"]`), "data-testid"); testID != nil {
		head, _, _ := strings.Cut(*testID, "--")
		p.ProductID = domain.StrPtr(head[strings.LastIndex(head, "-")+1:])
	}

	p.Name = scraper.Text(s.Find(".new-item-box__description p.web_ui__Text__text"))
	p.Price = scraper.NoBreak(scraper.Text(s.Find(`p[data-testid*="--price-text"]`)))
	if href := scraper.Attr(s.Find("a.new-item-box__overlay"), "href"); href != nil {
		p.URL = domain.StrPtr(scraper.Absolute(BaseURL, *href))
	}
	p.MainPhoto = scraper.Attr(s.Find("img.web_ui__Image__content"), "src")
	p.Description = scraper.Text(s.Find(`p[data-testid*="description-subtitle"]`))
	p.PriceWithProtection = scraper.NoBreak(scraper.Text(s.Find(`button[aria-label*="Protection"] > span > span`)))

	return p
}

// ParseDetail разбирает страницу объявления. Возвращает nil, если html не разобрать
// или на странице нет блока деталей (объявление удалено или заблокировано).
func ParseDetail(html string, now time.Time) *domain.Product {
	doc, err := scraper.Document(html)
	if err != nil {
		return nil
	}

	details := doc.Find(detailsContainer).First()
	if details.Length() == 0 {
		return nil
	}

	p := domain.NewProduct(Platform)
	if canonical := scraper.Attr(doc.Find(`link[rel="canonical"]`), "href"); canonical != nil {
		p.URL = canonical
		p.ProductID = idFromURL(*canonical)
	}

	p.Name = scraper.Text(doc.Find(`aside div[data-testid="item-page-summary-plugin"] div span`))
	p.Stock = domain.Ptr(details.Find(`div[data-testid="item-status--content"]`).Length() == 0)
	p.Price = scraper.NoBreak(scraper.Text(doc.Find(`aside div[data-testid="item-price"]`)))
	p.PriceWithProtection = scraper.NoBreak(scraper.Text(doc.Find(`aside button[aria-label*="Protection"] > div`)))

	// первая крошка ведёт на корень сайта
	if crumbs := scraper.Texts(doc.Find("ul.breadcrumbs.breadcrumbs--truncated a")); len(crumbs) > 1 {
		p.Categories = crumbs[1:]
	}
	p.DetailedPhotos = scraper.Attrs(doc.Find("section.item-photos__container img"), "src")

	p.Brand = scraper.Text(details.Find(`span[itemprop="name"]`))
	if size := scraper.Text(details.Find(`div[itemprop="size"]`)); size != nil {
		p.Sizes = domain.SingleSize(*size)
	}
	p.Condition = scraper.Text(details.Find(`div[itemprop="status"]`))
	if color := scraper.Text(details.Find(`div[itemprop="color"]`)); color != nil {
		p.Colors = domain.SingleColor(*color)
	}
	p.Views = leadingInt(scraper.Text(details.Find(`div[itemprop="view_count"]`)))
	p.Interested = leadingInt(scraper.Text(details.Find(`div[itemprop="interested"]`)))
	p.PaymentMethods = scraper.Text(details.Find(`div[itemprop="payment_methods"] span`))
	if uploaded := scraper.Text(details.Find(`div[data-testid="item-attributes-upload_date"] [itemprop="upload_date"]`)); uploaded != nil {
		p.Uploaded = domain.UploadedAt(now.Format(time.DateOnly), *uploaded)
	}

	p.DeliveryPrice = scraper.NoBreak(scraper.Text(doc.Find(`aside [data-testid="item-shipping-banner-price"]`)))
	if desc := scraper.Text(doc.Find(`aside div[itemprop="description"]`)); desc != nil {
		p.Description = domain.StrPtr(strings.ReplaceAll(*desc, "\n", ""))
	}
	p.OwnerName = scraper.Text(doc.Find(`aside [data-testid="profile-username"]`))
	if href := scraper.Attr(doc.Find(ownerLink), "href"); href != nil {
		p.OwnerProfileURL = domain.StrPtr(scraper.Absolute(BaseURL, *href))
	}

	return p
}

// idFromURL возвращает числовой id объявления из url, иначе
// последний сегмент пути целиком.
func idFromURL(raw string) *string {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	segments := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if m := itemID.FindString(last); m != "" {
		return &m
	}
	return domain.StrPtr(last)
}

// leadingInt разбирает первое слово текста, например "12 membres" → 12.
func leadingInt(text *string) *int64 {
	if text == nil {
		return nil
	}
	word, _, _ := strings.Cut(*text, " ")
	n, err := strconv.ParseInt(strings.ReplaceAll(word, " ", ""), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
