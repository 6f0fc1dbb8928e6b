package rest

import "github.com/majalleh/portal/internal/portal"

func Map[From, To any](list []From, converter func(From) To) []To {
	result := make([]To, len(list))
	for i := range list {
		result[i] = converter(list[i])
	}
	return result
}

func NewMagazineRow(m portal.Magazine) MagazineRow {
	return MagazineRow{
		ID:          m.ID,
		Title:       m.Title,
		Month:       m.Month,
		Year:        m.Year,
		Description: m.Description,
		CoverImage:  m.CoverImage,
		PDFURL:      m.PDFURL,
	}
}

func NewMagazineRows(magazines []portal.Magazine) []MagazineRow {
	return Map(magazines, NewMagazineRow)
}

func magazineFromCreate(req MagazineCreateRequest) portal.Magazine {
	magazine := portal.Magazine{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		PDFURL:      req.PDFURL,
	}
	if req.Month != nil {
		magazine.Month = *req.Month
	}
	if req.Year != nil {
		magazine.Year = *req.Year
	}

	return magazine
}

func patchFromUpdate(req MagazineUpdateRequest) portal.MagazinePatch {
	return portal.MagazinePatch{
		Title:       req.Title,
		Month:       req.Month,
		Year:        req.Year,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		PDFURL:      req.PDFURL,
	}
}

func NewArticleResponse(a portal.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Author:      a.Author,
		AuthorPhoto: a.AuthorPhoto,
		CreatedAt:   a.CreatedAt,
		Category:    a.Category,
		Tags:        a.Tags,
		Content:     a.Content,
		Excerpt:     a.Excerpt,
	}
}

func NewArticleResponses(articles []portal.Article) []ArticleResponse {
	return Map(articles, NewArticleResponse)
}

// NewSettingsObject assembles flat key/value settings rows into the client
// settings object. Keys with a "social." prefix become the nested social
// block; only keys present in storage appear in the result.
func NewSettingsObject(settings []portal.Setting) map[string]any {
	result := make(map[string]any, len(settings))
	social := make(map[string]string)

	for _, s := range settings {
		const prefix = "social."
		if len(s.Key) > len(prefix) && s.Key[:len(prefix)] == prefix {
			social[s.Key[len(prefix):]] = s.Value
			continue
		}
		result[s.Key] = s.Value
	}

	if len(social) > 0 {
		result["social"] = social
	}

	return result
}
