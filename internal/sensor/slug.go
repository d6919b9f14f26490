package sensor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const entityPrefix = "sensor.jellyfin_latest_"

var nonWordRegex = regexp.MustCompile(`\W+`)

// EntityID returns the entity id for a sensor display name,
// e.g. "TV Shows" becomes "sensor.jellyfin_latest_tv_shows".
func EntityID(name string) string {
	return entityPrefix + Slug(name)
}

// Slug folds accents, collapses runs of non-word characters to "_", drops
// one trailing "_" and lowercases.
func Slug(name string) string {
	s := removeAccents(name)
	s = nonWordRegex.ReplaceAllString(s, "_")
	s = strings.TrimSuffix(s, "_")
	return strings.ToLower(s)
}

// removeAccents strips diacritical marks ("Séries" -> "Series")
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
