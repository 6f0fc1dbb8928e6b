package rest

import "time"

// MagazineRow is the storage-shaped response object: listing keeps the
// snake_case keys of the magazines table.
type MagazineRow struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image"`
	PDFURL      string `json:"pdf_url"`
}

// MagazineCreateRequest is the client-shaped create payload (camelCase).
// Absent month/year are stored as zero, mirroring the permissive insert.
type MagazineCreateRequest struct {
	Title       string `json:"title"`
	Month       *int   `json:"month"`
	Year        *int   `json:"year"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	PDFURL      string `json:"pdfUrl"`
}

// MagazineUpdateRequest carries a required id plus any subset of the six
// mutable fields; only fields present in the body are written.
type MagazineUpdateRequest struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Month       *int    `json:"month"`
	Year        *int    `json:"year"`
	Description *string `json:"description"`
	CoverImage  *string `json:"coverImage"`
	PDFURL      *string `json:"pdfUrl"`
}

type ArticleResponse struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	AuthorPhoto string    `json:"authorPhoto,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// statusResponse is the mutation result envelope: {ok, id?, error?, details?}.
type statusResponse struct {
	OK      bool   `json:"ok"`
	ID      *int   `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}
