package extract

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify derives the stable keyword ID from a canonical string. ASCII-only
// keywords get a readable lowercase slug; anything carrying Hangul (or a
// slug with fewer than two alphanumerics) falls back to a deterministic
// 32-bit rolling hash emitted as kw_<base36>.
func Slugify(text string) string {
	canonical := strings.ToLower(strings.TrimSpace(text))

	if !containsHangul(canonical) {
		if slug, ok := asciiSlug(canonical); ok {
			return slug
		}
	}

	return "kw_" + strconv.FormatUint(uint64(rollingHash(canonical)), 36)
}

func asciiSlug(canonical string) (string, bool) {
	var b strings.Builder
	lastUnderscore := true
	alnum := 0

	for _, r := range canonical {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			alnum++
			lastUnderscore = false
		case r > unicode.MaxASCII:
			return "", false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	slug := strings.Trim(b.String(), "_")
	if alnum < 2 || slug == "" {
		return "", false
	}
	return slug, true
}

// rollingHash is h = (h<<5 - h + codepoint) mod 2^32 over NFC codepoints,
// so visually identical inputs hash identically.
func rollingHash(s string) uint32 {
	var h uint32
	for _, r := range norm.NFC.String(s) {
		h = h<<5 - h + uint32(r)
	}
	return h
}

func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
