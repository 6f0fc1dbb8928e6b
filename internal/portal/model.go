package portal

import "time"

type Magazine struct {
	ID          int
	Title       string
	Month       int
	Year        int
	Description string
	CoverImage  string
	PDFURL      string
}

// MagazinePatch is a partial update: only non-nil fields are written.
type MagazinePatch struct {
	Title       *string
	Month       *int
	Year        *int
	Description *string
	CoverImage  *string
	PDFURL      *string
}

func (p MagazinePatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Month == nil &&
		p.Year == nil &&
		p.Description == nil &&
		p.CoverImage == nil &&
		p.PDFURL == nil
}

type Article struct {
	ID          int
	Title       string
	Author      string
	AuthorPhoto string
	CreatedAt   time.Time
	Category    string
	Tags        []string
	Content     string
	Excerpt     string
}

// Setting is a single site configuration entry. Nested keys use a dot,
// e.g. "social.telegram".
type Setting struct {
	Key   string
	Value string
}
