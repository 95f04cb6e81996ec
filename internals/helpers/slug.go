package helper

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Slugify turns free text into a [a-z0-9-] slug: strips diacritics
// (é → e), collapses separators, trims the ends, enforces maxLen
// (default 100 when <=0), falls back to "pagina".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) { // nonspacing marks
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		s = "pagina"
	}
	if utf8.RuneCountInString(s) > maxLen {
		rs := []rune(s)
		s = string(rs[:maxLen])
		s = strings.Trim(s, "-")
	}
	if s == "" {
		s = "pagina"
	}
	return s
}

// UniqueSlug appends a short random token so that two orders with the same
// title still get distinct slugs. Collisions remain possible in theory; the
// unique index on orders.order_slug is the real guarantee.
func UniqueSlug(title string) string {
	base := Slugify(title, 60)
	token := strings.Split(uuid.New().String(), "-")[0]
	return base + "-" + token
}
