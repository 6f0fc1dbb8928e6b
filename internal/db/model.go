package db

import (
	"time"
)

// Columns holds the storage column names. The wire layer exposes camelCase
// request fields; this is the single place the snake_case side of that
// mapping is spelled out.
var Columns = struct {
	Magazine struct {
		ID, Title, Month, Year, Description, CoverImage, PDFURL string
	}
	Article struct {
		ID, Title, Author, AuthorPhoto, CreatedAt, Category, Tags, Content, Excerpt string
	}
	Setting struct {
		Key, Value string
	}
	User struct {
		ID, Username, PasswordHash string
	}
}{
	Magazine: struct {
		ID, Title, Month, Year, Description, CoverImage, PDFURL string
	}{
		ID:          "id",
		Title:       "title",
		Month:       "month",
		Year:        "year",
		Description: "description",
		CoverImage:  "cover_image",
		PDFURL:      "pdf_url",
	},
	Article: struct {
		ID, Title, Author, AuthorPhoto, CreatedAt, Category, Tags, Content, Excerpt string
	}{
		ID:          "id",
		Title:       "title",
		Author:      "author",
		AuthorPhoto: "author_photo",
		CreatedAt:   "created_at",
		Category:    "category",
		Tags:        "tags",
		Content:     "content",
		Excerpt:     "excerpt",
	},
	Setting: struct {
		Key, Value string
	}{
		Key:   "key",
		Value: "value",
	},
	User: struct {
		ID, Username, PasswordHash string
	}{
		ID:           "id",
		Username:     "username",
		PasswordHash: "password_hash",
	},
}

type Magazine struct {
	tableName struct{} `pg:"magazines,alias:t,discard_unknown_columns"`

	ID          int    `pg:"id,pk"`
	Title       string `pg:"title,use_zero"`
	Month       int    `pg:"month,use_zero"`
	Year        int    `pg:"year,use_zero"`
	Description string `pg:"description,use_zero"`
	CoverImage  string `pg:"cover_image,use_zero"`
	PDFURL      string `pg:"pdf_url,use_zero"`
}

type Article struct {
	tableName struct{} `pg:"articles,alias:t,discard_unknown_columns"`

	ID          int       `pg:"id,pk"`
	Title       string    `pg:"title,use_zero"`
	Author      string    `pg:"author,use_zero"`
	AuthorPhoto string    `pg:"author_photo,use_zero"`
	CreatedAt   time.Time `pg:"created_at,use_zero"`
	Category    string    `pg:"category,use_zero"`
	Tags        []string  `pg:"tags,array,use_zero"`
	Content     string    `pg:"content,use_zero"`
	Excerpt     string    `pg:"excerpt,use_zero"`
}

type Setting struct {
	tableName struct{} `pg:"settings,alias:t,discard_unknown_columns"`

	Key   string `pg:"key,pk"`
	Value string `pg:"value,use_zero"`
}

type User struct {
	tableName struct{} `pg:"users,alias:t,discard_unknown_columns"`

	ID           int    `pg:"id,pk"`
	Username     string `pg:"username,use_zero"`
	PasswordHash string `pg:"password_hash,use_zero"`
}
