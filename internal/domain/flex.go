package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Sizes — одна метка размера или их список.
type Sizes struct {
	One  string
	Many []string
}

func SingleSize(s string) *Sizes { return &Sizes{One: s} }

func SizeList(s []string) *Sizes { return &Sizes{Many: s} }

func (s Sizes) MarshalJSON() ([]byte, error) {
	if s.Many != nil {
		return json.Marshal(s.Many)
	}
	return json.Marshal(s.One)
}

func (s *Sizes) UnmarshalJSON(data []byte) error {
	*s = Sizes{}
	switch firstByte(data) {
	case '[':
		return json.Unmarshal(data, &s.Many)
	case '"':
		return json.Unmarshal(data, &s.One)
	default:
		return fmt.Errorf("sizes: unsupported json %s", data)
	}
}

// Colors: одно название цвета, список названий или карта название→url образца.
type Colors struct {
	One    string
	List   []string
	Images map[string]string
}

func SingleColor(s string) *Colors { return &Colors{One: s} }

func ColorList(s []string) *Colors { return &Colors{List: s} }

func ColorImages(m map[string]string) *Colors { return &Colors{Images: m} }

func (c Colors) MarshalJSON() ([]byte, error) {
	switch {
	case c.Images != nil:
		return json.Marshal(c.Images)
	case c.List != nil:
		return json.Marshal(c.List)
	default:
		return json.Marshal(c.One)
	}
}

func (c *Colors) UnmarshalJSON(data []byte) error {
	*c = Colors{}
	switch firstByte(data) {
	case '{':
		return json.Unmarshal(data, &c.Images)
	case '[':
		return json.Unmarshal(data, &c.List)
	case '"':
		return json.Unmarshal(data, &c.One)
	default:
		return fmt.Errorf("colors: unsupported json %s", data)
	}
}

// Uploaded — свободный текст или пара (дата сбора, время публикации как на сайте).
type Uploaded struct {
	Text    string
	Scraped string
	Time    string
}

type uploadedPair struct {
	Scraped string `json:"scraped"`
	Time    string `json:"time"`
}

func UploadedText(s string) *Uploaded { return &Uploaded{Text: s} }

func UploadedAt(scraped, time string) *Uploaded {
	return &Uploaded{Scraped: scraped, Time: time}
}

// IsPair сообщает, используется ли структурная форма.
func (u Uploaded) IsPair() bool {
	return u.Text == "" && (u.Scraped != "" || u.Time != "")
}

func (u Uploaded) MarshalJSON() ([]byte, error) {
	if u.IsPair() {
		return json.Marshal(uploadedPair{Scraped: u.Scraped, Time: u.Time})
	}
	return json.Marshal(u.Text)
}

func (u *Uploaded) UnmarshalJSON(data []byte) error {
	*u = Uploaded{}
	switch firstByte(data) {
	case '{':
		var p uploadedPair
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		u.Scraped, u.Time = p.Scraped, p.Time
		return nil
	case '"':
		return json.Unmarshal(data, &u.Text)
	default:
		return fmt.Errorf("uploaded: unsupported json %s", data)
	}
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
