package scraper

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snippet = `<ul>
  <li class="item" data-id=" 1 "><a href="/a">  First </a></li>
  <li class="item" data-id=""><a href="https://other.example/b">Second</a></li>
  <li class="item"><a>   </a></li>
</ul>`

func TestHelpers(t *testing.T) {
	doc, err := Document(snippet)
	require.NoError(t, err)
	items := doc.Find("li.item")

	assert.Equal(t, "First", *Text(items.Find("a")))
	assert.Nil(t, Text(doc.Find("p")))
	assert.Nil(t, Text(items.Eq(2).Find("a")))

	assert.Equal(t, "1", *Attr(items, "data-id"))
	assert.Nil(t, Attr(items.Eq(1), "data-id"))
	assert.Nil(t, Attr(items.Eq(2), "data-id"))

	assert.Equal(t, []string{"First", "Second"}, Texts(items.Find("a")))
	assert.Equal(t, []string{"1"}, Attrs(items, "data-id"))
	assert.Nil(t, Texts(doc.Find("p")))
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://www.example.fr/dp/1", Absolute("https://www.example.fr", "/dp/1"))
	assert.Equal(t, "https://cdn.example.fr/x.jpg", Absolute("https://www.example.fr", "https://cdn.example.fr/x.jpg"))
	assert.Equal(t, "", Absolute("https://www.example.fr", "  "))
}

func TestNoBreak(t *testing.T) {
	assert.Equal(t, "12,00 €", *NoBreak(strPtr("12,00\u00a0€")))
	assert.Equal(t, "1 234 €", *NoBreak(strPtr("1\u202f234\u00a0€")))
	assert.Nil(t, NoBreak(nil))
}

func TestEachNode(t *testing.T) {
	doc, err := Document(snippet)
	require.NoError(t, err)

	var seen []string
	failed := EachNode(doc.Find("li.item"), 0, func(s *goquery.Selection) {
		if s.Find("a").AttrOr("href", "") == "" {
			panic("no link")
		}
		seen = append(seen, s.Find("a").AttrOr("href", ""))
	})
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"/a", "https://other.example/b"}, seen)

	calls := 0
	failed = EachNode(doc.Find("li.item"), 2, func(*goquery.Selection) { calls++ })
	assert.Zero(t, failed)
	assert.Equal(t, 2, calls)
}

func strPtr(s string) *string { return &s }
