// Package slug builds URL identifiers from display names.
package slug

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a name has no transliterable characters.
const Fallback = "untitled"

// ErrExhausted is returned by Unique once the next numeric suffix no longer
// fits in maxLen.
var ErrExhausted = errors.New("slug: no free suffix fits within the length limit")

// ExistsFunc reports whether candidate is already taken for the owning type.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Make lowercases s, transliterates it to ASCII and joins words with single
// hyphens. Only letters, digits, underscores and hyphens survive.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingHyphen := false
	for _, r := range decomposed {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = b.Len() > 0
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Trim(b.String(), "-_")
}

// Truncate cuts s to at most n bytes and drops a dangling hyphen. Slugs are
// ASCII so byte and rune counts agree. n <= 0 means no limit.
func Truncate(s string, n int) string {
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	return strings.TrimRight(s, "-")
}

// Unique returns Make(base) cut to maxLen, or the first free "-N" variant of
// it. The stem is shortened before the suffix is added so the result never
// exceeds maxLen. Given the same set of taken slugs the result is always the
// same.
//
// When the stem no longer fits next to the suffix, the bare number is used.
// A positive maxLen therefore allows 10^maxLen - 1 suffixed candidates and
// Unique fails with ErrExhausted after that. Catalog slugs use a bound of 50
// and never get there. A maxLen of zero or less means no bound.
func Unique(ctx context.Context, base string, maxLen int, exists ExistsFunc) (string, error) {
	stem := Truncate(Make(base), maxLen)
	if stem == "" {
		stem = Truncate(Fallback, maxLen)
	}

	for n := 0; ; n++ {
		candidate := stem
		if n > 0 {
			suffix := strconv.Itoa(n)
			room := maxLen - len(suffix) - 1
			switch {
			case maxLen <= 0:
				candidate = stem + "-" + suffix
			case room > 0 && Truncate(stem, room) != "":
				candidate = Truncate(stem, room) + "-" + suffix
			case len(suffix) <= maxLen:
				candidate = suffix
			default:
				return "", ErrExhausted
			}
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
