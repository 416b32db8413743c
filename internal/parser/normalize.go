package parser

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	// Stray glyphs produced by table rulings and card borders when they land
	// at the start of a line.
	reLeadGlyphs = regexp.MustCompile("^[|`'\"“”‘’~^*_=;:.,·•!¡?<>\\\\-]+")
	reTailSep    = regexp.MustCompile(`[\s|,;:._—–-]+$`)
	reLeadSep    = regexp.MustCompile(`^[\s|,;:._—–-]+`)

	// 1-2 letter misread of a bullet or icon glued to the real content.
	reNoiseColon = regexp.MustCompile(`^\p{L}{1,2}:\s*`)
	reNoiseCap   = regexp.MustCompile(`^\p{Ll}{1,2}(\p{Lu})`)

	// Lone "ai"/"a"/"i" token before a capitalized word, stray "Boy" before a
	// digit: both recurring recognizer artifacts on card stock.
	reAiArtifact  = regexp.MustCompile(`(?i)\b(ai|a|i)\s+(\p{Lu})`)
	reBoyArtifact = regexp.MustCompile(`\bBoy\s+(\d)`)
)

// NormalizeLine collapses whitespace, replaces internal pipes with spaces and
// strips leading stray punctuation. Pure and total: narrower output, never an
// error.
func NormalizeLine(s string) string {
	s = strings.ReplaceAll(s, "|", " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = reLeadGlyphs.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanSemanticLine additionally strips a leading 1-2 letter OCR noise prefix
// glued before a colon or a capital letter.
func CleanSemanticLine(s string) string {
	s = NormalizeLine(s)
	s = reNoiseColon.ReplaceAllString(s, "")
	s = reNoiseCap.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// CleanupFieldText is applied to final field values: trims separator
// punctuation and drops known OCR artifact tokens.
func CleanupFieldText(s string) string {
	s = reWhitespace.ReplaceAllString(s, " ")
	s = reAiArtifact.ReplaceAllString(s, "$2")
	s = reBoyArtifact.ReplaceAllString(s, "$1")
	s = reLeadSep.ReplaceAllString(s, "")
	s = reTailSep.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
