package client

import (
	"encoding/json"
)

// Article is the client-side article shape. Servers are inconsistent about
// where an author photo lives, so unrecognized string-valued fields are kept
// in Fields for photo discovery, and the original payload is kept for
// lossless persistence.
type Article struct {
	ID        int
	Title     string
	Author    Author
	CreatedAt string
	Category  string
	Tags      []string
	Content   string
	Excerpt   string

	// Fields holds top-level string values outside the known keys,
	// e.g. authorPhoto, avatar_url.
	Fields map[string]string

	raw json.RawMessage
}

var articleKnownKeys = map[string]struct{}{
	"id": {}, "title": {}, "author": {}, "createdAt": {},
	"category": {}, "tags": {}, "content": {}, "excerpt": {},
}

type articleJSON struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Author    json.RawMessage `json:"author"`
	CreatedAt string          `json:"createdAt"`
	Category  string          `json:"category"`
	Tags      []string        `json:"tags"`
	Content   string          `json:"content"`
	Excerpt   string          `json:"excerpt"`
}

func (a *Article) UnmarshalJSON(data []byte) error {
	var aux articleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.ID = aux.ID
	a.Title = aux.Title
	a.CreatedAt = aux.CreatedAt
	a.Category = aux.Category
	a.Tags = aux.Tags
	a.Content = aux.Content
	a.Excerpt = aux.Excerpt

	if len(aux.Author) > 0 {
		if err := json.Unmarshal(aux.Author, &a.Author); err != nil {
			return err
		}
	} else {
		a.Author = Author{}
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	a.Fields = nil
	for key, value := range all {
		if _, known := articleKnownKeys[key]; known {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil || s == "" {
			continue
		}
		if a.Fields == nil {
			a.Fields = make(map[string]string)
		}
		a.Fields[key] = s
	}

	a.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (a Article) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}

	author, err := json.Marshal(a.Author)
	if err != nil {
		return nil, err
	}

	return json.Marshal(articleJSON{
		ID:        a.ID,
		Title:     a.Title,
		Author:    author,
		CreatedAt: a.CreatedAt,
		Category:  a.Category,
		Tags:      a.Tags,
		Content:   a.Content,
		Excerpt:   a.Excerpt,
	})
}

// Author accepts either a bare name string or an object with a name and
// photo-ish fields; the object's string fields are kept for photo discovery.
type Author struct {
	Name   string
	Fields map[string]string
}

func (a *Author) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Name = name
		a.Fields = nil
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	a.Name = ""
	a.Fields = nil
	for key, value := range obj {
		var s string
		if err := json.Unmarshal(value, &s); err != nil || s == "" {
			continue
		}
		if key == "name" {
			a.Name = s
			continue
		}
		if a.Fields == nil {
			a.Fields = make(map[string]string)
		}
		a.Fields[key] = s
	}

	return nil
}

func (a Author) MarshalJSON() ([]byte, error) {
	if a.Fields == nil {
		return json.Marshal(a.Name)
	}

	obj := make(map[string]string, len(a.Fields)+1)
	for key, value := range a.Fields {
		obj[key] = value
	}
	if a.Name != "" {
		obj["name"] = a.Name
	}
	return json.Marshal(obj)
}

// Magazine is the client-side issue shape. The wire layer is inconsistent:
// the server lists snake_case rows while client payloads are camelCase, so
// decoding accepts both and encoding always emits the client schema.
type Magazine struct {
	ID          int
	Title       string
	Month       int
	Year        int
	Description string
	CoverImage  string
	PDFURL      string
}

func (m *Magazine) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Month       int    `json:"month"`
		Year        int    `json:"year"`
		Description string `json:"description"`
		CoverImage  string `json:"coverImage"`
		CoverSnake  string `json:"cover_image"`
		PDFURL      string `json:"pdfUrl"`
		PDFSnake    string `json:"pdf_url"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.ID = aux.ID
	m.Title = aux.Title
	m.Month = aux.Month
	m.Year = aux.Year
	m.Description = aux.Description

	m.CoverImage = aux.CoverImage
	if m.CoverImage == "" {
		m.CoverImage = aux.CoverSnake
	}
	m.PDFURL = aux.PDFURL
	if m.PDFURL == "" {
		m.PDFURL = aux.PDFSnake
	}

	return nil
}

func (m Magazine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Month       int    `json:"month"`
		Year        int    `json:"year"`
		Description string `json:"description"`
		CoverImage  string `json:"coverImage"`
		PDFURL      string `json:"pdfUrl"`
	}{m.ID, m.Title, m.Month, m.Year, m.Description, m.CoverImage, m.PDFURL})
}

type SocialLinks struct {
	Telegram  string `json:"telegram,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Settings carries the recognized site configuration keys. Consumers apply
// only the keys present and keep their defaults otherwise. Social is a
// pointer so an absent block stays absent when the settings are re-encoded.
type Settings struct {
	SiteName    string       `json:"siteName,omitempty"`
	Tagline     string       `json:"tagline,omitempty"`
	TaglineText string       `json:"taglineText,omitempty"`
	LogoURL     string       `json:"logoUrl,omitempty"`
	Logo        string       `json:"logo,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     string       `json:"address,omitempty"`
	Social      *SocialLinks `json:"social,omitempty"`
	FooterText  string       `json:"footerText,omitempty"`
}

// TaglineValue resolves the tagline/taglineText alternates.
func (s Settings) TaglineValue() string {
	if s.Tagline != "" {
		return s.Tagline
	}
	return s.TaglineText
}

// LogoValue resolves the logoUrl/logo alternates.
func (s Settings) LogoValue() string {
	if s.LogoURL != "" {
		return s.LogoURL
	}
	return s.Logo
}

func (s Settings) IsZero() bool {
	return s == Settings{}
}
