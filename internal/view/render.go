package view

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/majalleh/portal/internal/client"
)

var persianMonths = [...]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// MonthName returns the Persian month name for 1-12, or empty otherwise.
func MonthName(month int) string {
	if month < 1 || month > len(persianMonths) {
		return ""
	}
	return persianMonths[month-1]
}

var categoryLabels = map[string]string{
	"all":        "همه",
	"technology": "فناوری",
	"culture":    "فرهنگ و هنر",
	"science":    "علم",
	"society":    "جامعه",
	"literature": "ادبیات",
}

func CategoryLabel(key string) string {
	if label, ok := categoryLabels[key]; ok {
		return label
	}
	return key
}

// FormatDate turns an ISO-ish date string into a short display date. The
// raw string is shown unchanged when it does not parse.
func FormatDate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006/01/02")
		}
	}
	return raw
}

var templates = template.Must(template.New("portal").Parse(`
{{define "articleCard"}}<article class="article-card" data-id="{{.ID}}">
	<div class="article-meta">
		<span class="article-category">{{.CategoryLabel}}</span>
		<span class="article-date">{{.Date}}</span>
	</div>
	<h3 class="article-title">{{.Title}}</h3>
	{{if .Excerpt}}<p class="article-excerpt">{{.Excerpt}}</p>{{end}}
	<div class="article-author">
		{{if .AuthorPhoto}}<img class="author-photo" src="{{.AuthorPhoto}}" alt="{{.AuthorName}}">{{end}}
		<span class="author-name">{{.AuthorName}}</span>
	</div>
	{{if .Tags}}<ul class="article-tags">{{range .Tags}}<li>{{.}}</li>{{end}}</ul>{{end}}
	<button class="favorite-toggle{{if .Favorite}} active{{end}}" data-id="{{.ID}}">&#9829;</button>
</article>{{end}}

{{define "articleModal"}}<div class="modal article-modal" data-id="{{.ID}}">
	<div class="modal-header">
		<h2>{{.Title}}</h2>
		<div class="article-author">
			{{if .AuthorPhoto}}<img class="author-photo" src="{{.AuthorPhoto}}" alt="{{.AuthorName}}">{{end}}
			<span class="author-name">{{.AuthorName}}</span>
			<span class="article-date">{{.Date}}</span>
		</div>
	</div>
	<div class="modal-body">{{.Content}}</div>
</div>{{end}}

{{define "magazineCard"}}<article class="magazine-card" data-id="{{.ID}}">
	{{if .Cover}}<img class="magazine-cover" src="{{.Cover}}" alt="{{.Title}}">{{end}}
	<h3 class="magazine-title">{{.Title}}</h3>
	<span class="magazine-issue">{{.MonthName}} {{.Year}}</span>
	{{if .Description}}<p class="magazine-description">{{.Description}}</p>{{end}}
	{{if .PDFURL}}<a class="magazine-pdf" href="{{.PDFURL}}" target="_blank" rel="noopener">دانلود نسخه PDF</a>{{end}}
	{{if .Admin}}<button class="magazine-delete" data-id="{{.ID}}">حذف</button>{{end}}
</article>{{end}}

{{define "emptyState"}}<div class="empty-state">{{.}}</div>{{end}}
`))

type articleCardData struct {
	ID            int
	Title         string
	Excerpt       string
	CategoryLabel string
	Date          string
	AuthorName    string
	AuthorPhoto   string
	Tags          []string
	Favorite      bool
	Content       template.HTML
}

type magazineCardData struct {
	ID          int
	Title       string
	MonthName   string
	Year        int
	Description string
	Cover       string
	PDFURL      string
	Admin       bool
}

// Renderer turns client state into HTML fragments. Image references are
// resolved against the page URL; unresolvable ones are left out entirely.
type Renderer struct {
	page *url.URL
}

func NewRenderer(page *url.URL) *Renderer {
	return &Renderer{page: page}
}

func (r *Renderer) ArticleCard(a client.Article, favorite bool) (string, error) {
	return r.execute("articleCard", r.articleData(a, favorite))
}

func (r *Renderer) ArticleModal(a client.Article) (string, error) {
	return r.execute("articleModal", r.articleData(a, false))
}

func (r *Renderer) MagazineCard(m client.Magazine, admin bool) (string, error) {
	return r.execute("magazineCard", magazineCardData{
		ID:          m.ID,
		Title:       m.Title,
		MonthName:   MonthName(m.Month),
		Year:        m.Year,
		Description: m.Description,
		Cover:       NormalizeImageURL(m.CoverImage, r.page),
		// PDF links are used as given, they point off-site.
		PDFURL: m.PDFURL,
		Admin:  admin,
	})
}

func (r *Renderer) EmptyState(message string) (string, error) {
	return r.execute("emptyState", message)
}

func (r *Renderer) articleData(a client.Article, favorite bool) articleCardData {
	return articleCardData{
		ID:            a.ID,
		Title:         a.Title,
		Excerpt:       a.Excerpt,
		CategoryLabel: CategoryLabel(a.Category),
		Date:          FormatDate(a.CreatedAt),
		AuthorName:    a.Author.Name,
		AuthorPhoto:   AuthorPhotoFromArticle(a, r.page),
		Tags:          a.Tags,
		Favorite:      favorite,
		Content:       template.HTML(a.Content),
	}
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
