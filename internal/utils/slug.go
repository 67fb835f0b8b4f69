// Package utils provides small shared helpers with no domain dependencies.
package utils

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// translit maps letters that NFD decomposition cannot reduce to ASCII.
var translit = map[rune]string{
	'ə': "e", 'Ə': "e",
	'ı': "i", 'İ': "i",
	'ß': "ss",
	'ø': "o", 'Ø': "o",
	'đ': "d", 'Đ': "d",
	'þ': "th", 'Þ': "th",
	'æ': "ae", 'Æ': "ae",
	'œ': "oe", 'Œ': "oe",
	'ł': "l", 'Ł': "l",
}

// stripMarks removes combining marks left over after NFD decomposition,
// so "é" becomes "e".
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slugify converts an arbitrary display name into a lowercase URL-safe
// handle: accents are stripped, known non-decomposable letters are
// transliterated, and every other non-alphanumeric run collapses to a
// single dash. An input with no usable characters yields "".
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range s {
		if repl, ok := translit[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	out, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		out = b.String()
	}
	out = strings.ToLower(out)

	var slug strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				slug.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(slug.String(), "-")
}

// UniqueSlug returns base if it is free according to exists, otherwise the
// first "base-N" (N starting at 1) that is. An empty base falls back to
// "user".
func UniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	if base == "" {
		base = "user"
	}
	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
