package portal

import "github.com/majalleh/portal/internal/db"

func NewMagazine(row *db.Magazine) Magazine {
	return Magazine{
		ID:          row.ID,
		Title:       row.Title,
		Month:       row.Month,
		Year:        row.Year,
		Description: row.Description,
		CoverImage:  row.CoverImage,
		PDFURL:      row.PDFURL,
	}
}

func NewMagazines(rows []db.Magazine) []Magazine {
	magazines := make([]Magazine, len(rows))
	for i := range rows {
		magazines[i] = NewMagazine(&rows[i])
	}
	return magazines
}

func magazineToDB(m Magazine) db.Magazine {
	return db.Magazine{
		ID:          m.ID,
		Title:       m.Title,
		Month:       m.Month,
		Year:        m.Year,
		Description: m.Description,
		CoverImage:  m.CoverImage,
		PDFURL:      m.PDFURL,
	}
}

// patchToDB maps set patch fields onto a row plus the list of columns to
// write. This is the one place the patch-to-column mapping lives.
func patchToDB(id int, patch MagazinePatch) (db.Magazine, []string) {
	row := db.Magazine{ID: id}
	var columns []string

	if patch.Title != nil {
		row.Title = *patch.Title
		columns = append(columns, db.Columns.Magazine.Title)
	}
	if patch.Month != nil {
		row.Month = *patch.Month
		columns = append(columns, db.Columns.Magazine.Month)
	}
	if patch.Year != nil {
		row.Year = *patch.Year
		columns = append(columns, db.Columns.Magazine.Year)
	}
	if patch.Description != nil {
		row.Description = *patch.Description
		columns = append(columns, db.Columns.Magazine.Description)
	}
	if patch.CoverImage != nil {
		row.CoverImage = *patch.CoverImage
		columns = append(columns, db.Columns.Magazine.CoverImage)
	}
	if patch.PDFURL != nil {
		row.PDFURL = *patch.PDFURL
		columns = append(columns, db.Columns.Magazine.PDFURL)
	}

	return row, columns
}

func NewArticle(row *db.Article) Article {
	return Article{
		ID:          row.ID,
		Title:       row.Title,
		Author:      row.Author,
		AuthorPhoto: row.AuthorPhoto,
		CreatedAt:   row.CreatedAt,
		Category:    row.Category,
		Tags:        row.Tags,
		Content:     row.Content,
		Excerpt:     row.Excerpt,
	}
}

func NewArticles(rows []db.Article) []Article {
	articles := make([]Article, len(rows))
	for i := range rows {
		articles[i] = NewArticle(&rows[i])
	}
	return articles
}

func NewSettings(rows []db.Setting) []Setting {
	settings := make([]Setting, len(rows))
	for i := range rows {
		settings[i] = Setting{Key: rows[i].Key, Value: rows[i].Value}
	}
	return settings
}
