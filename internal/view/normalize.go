package view

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/majalleh/portal/internal/client"
)

var imageFileRe = regexp.MustCompile(`(?i)^[^/\\?#]+\.(jpe?g|png|gif|webp|svg)(\?.*)?$`)

var imageExtRe = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg)(\?.*)?$`)

// NormalizeImageURL resolves a free-form image reference against the page
// URL. Sources put anything in these fields: data URIs, absolute URLs,
// asset paths, bare upload filenames. An empty result means the reference is
// unusable and the image should be omitted, never replaced with a stand-in.
func NormalizeImageURL(raw string, page *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || page == nil {
		return ""
	}

	if strings.HasPrefix(raw, "data:") {
		return raw
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}

	origin := page.Scheme + "://" + page.Host

	if strings.HasPrefix(raw, "/") && strings.Contains(raw, "/assets/") {
		return origin + raw
	}

	if strings.HasPrefix(raw, "assets/uploads/") || strings.HasPrefix(raw, "uploads/") {
		return origin + "/" + raw
	}

	// A bare filename is assumed to be an upload.
	if imageFileRe.MatchString(raw) {
		return origin + "/assets/uploads/" + raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return page.ResolveReference(ref).String()
}

// Field names checked, in order, on a nested author object.
var authorObjectPhotoKeys = []string{
	"photo", "avatar", "image", "photoUrl", "photo_url", "avatar_url", "image_url",
}

// Field names checked, in order, on the article itself.
var articlePhotoKeys = []string{
	"authorPhoto", "author_photo", "authorImage", "author_image",
	"avatar", "photo", "image",
	"author_avatar", "author_image_url", "avatar_url",
}

// AuthorPhotoFromArticle hunts for an author photo: known fields on a nested
// author object first, then known top-level fields, then any other string
// field that looks like an image file. Returns the first value that
// normalizes to a usable URL, or empty when none does.
func AuthorPhotoFromArticle(a client.Article, page *url.URL) string {
	for _, key := range authorObjectPhotoKeys {
		if v, ok := a.Author.Fields[key]; ok {
			if u := NormalizeImageURL(v, page); u != "" {
				return u
			}
		}
	}

	for _, key := range articlePhotoKeys {
		if v, ok := a.Fields[key]; ok {
			if u := NormalizeImageURL(v, page); u != "" {
				return u
			}
		}
	}

	keys := make([]string, 0, len(a.Fields))
	for key := range a.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := a.Fields[key]
		if imageExtRe.MatchString(v) {
			if u := NormalizeImageURL(v, page); u != "" {
				return u
			}
		}
	}

	return ""
}
