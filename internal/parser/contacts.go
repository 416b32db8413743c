package parser

import (
	"regexp"
	"strings"
)

// Contacts holds the deduplicated contact tokens found in a line set, plus
// the raw matched substrings so they can be stripped from every line before
// field classification.
type Contacts struct {
	Emails  []string
	Phones  []string
	Website string

	raw []string // matched substrings as they appeared in the text
}

// Phone digit-count acceptance window and the recognizer "bleed" allowance
// (a stray adjacent digit or two appended to an otherwise valid number).
const (
	phoneMinDigits = 7
	phoneMaxDigits = 20
	phoneMaxBleed  = 2
)

// ExtractContacts pulls emails, phones and the website out of normalized
// lines. Candidates failing their shape checks are discarded silently.
func ExtractContacts(lines []string) Contacts {
	var c Contacts
	text := strings.Join(lines, "\n")

	seenEmail := map[string]struct{}{}
	addEmail := func(raw, normalized string) {
		key := strings.ToLower(normalized)
		if _, ok := seenEmail[key]; ok {
			return
		}
		seenEmail[key] = struct{}{}
		c.Emails = append(c.Emails, normalized)
		c.raw = append(c.raw, raw)
	}
	for _, m := range emailRe.FindAllString(text, -1) {
		if e, ok := repairEmail(m); ok {
			addEmail(m, e)
		}
	}
	// A whole line containing '@' may be an email shattered by the
	// recognizer ("john @ acme . com"); accept it when the de-spaced line
	// validates on its own.
	for _, ln := range lines {
		if !strings.Contains(ln, "@") {
			continue
		}
		if e, ok := repairEmail(ln); ok {
			addEmail(ln, e)
		}
	}

	seenPhone := map[string]struct{}{}
	for _, ln := range lines {
		for _, cand := range findPhones(ln) {
			key := phoneKey(cand.canon)
			if _, ok := seenPhone[key]; ok {
				continue
			}
			seenPhone[key] = struct{}{}
			c.Phones = append(c.Phones, cand.canon)
			c.raw = append(c.raw, cand.raw)
		}
	}

	if raw, site, ok := findWebsite(text, c.Emails); ok {
		c.Website = site
		c.raw = append(c.raw, raw)
	}
	return c
}

// Strip removes every found contact token from every line,
// case-insensitively, so no downstream field is contaminated by a partially
// matched contact substring.
func (c Contacts) Strip(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		for _, tok := range c.raw {
			if tok == "" {
				continue
			}
			re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(tok))
			ln = re.ReplaceAllString(ln, " ")
		}
		ln = NormalizeLine(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// repairEmail normalizes an email candidate (stray commas/semicolons,
// whitespace shattered around '@' and '.') and validates the result.
func repairEmail(s string) (string, bool) {
	s = strings.Trim(s, ",;:")
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == ';' {
			return -1
		}
		return r
	}, s)
	joined := strings.Join(strings.Fields(s), "")
	joined = strings.TrimPrefix(joined, "mailto:")
	// a colon left in the candidate means a glued "Email:" style label, not
	// an address
	if strings.Contains(joined, ":") {
		return "", false
	}
	if strictEmailRe.MatchString(joined) && strings.Count(joined, "@") == 1 {
		return joined, true
	}
	return "", false
}

type phoneCandidate struct {
	raw   string
	canon string
}

// findPhones returns raw/canonical phone candidates found in one line, in
// order of appearance.
func findPhones(line string) []phoneCandidate {
	var found []phoneCandidate
	// extensions sit outside the digit run; cut them before matching so the
	// remainder canonicalizes cleanly
	trimmed := phoneExtRe.ReplaceAllString(line, "")
	for _, loc := range phoneRe.FindAllStringIndex(trimmed, -1) {
		raw := trimmed[loc[0]:loc[1]]
		if loc[0] > 0 && trimmed[loc[0]-1] == '+' {
			raw = "+" + raw
		}
		if canon, ok := canonicalizePhone(raw); ok {
			found = append(found, phoneCandidate{raw: raw, canon: canon})
		}
	}
	return found
}

func canonicalizePhone(raw string) (string, bool) {
	s := phoneExtRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	digits := digitsOf(s)
	// trailing bleed digits from an adjacent token
	for bleed := 0; len(digits) > phoneMaxDigits && bleed < phoneMaxBleed; bleed++ {
		s = strings.TrimRightFunc(s[:lastDigitIndex(s)], func(r rune) bool { return r < '0' || r > '9' })
		digits = digitsOf(s)
	}
	if len(digits) < phoneMinDigits || len(digits) > phoneMaxDigits {
		return "", false
	}
	return s, true
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lastDigitIndex(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] >= '0' && s[i] <= '9' {
			return i
		}
	}
	return 0
}

func phoneKey(s string) string {
	key := digitsOf(s)
	if strings.HasPrefix(strings.TrimSpace(s), "+") {
		key = "+" + key
	}
	return key
}

// findWebsite locates the first URL/domain-shaped substring in the text with
// the first email removed, with a "spaced domain" repair fallback
// ("example com" -> "example.com").
func findWebsite(text string, emails []string) (raw, site string, ok bool) {
	if len(emails) > 0 {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(emails[0]))
		text = re.ReplaceAllString(text, " ")
	}
	for _, m := range urlRe.FindAllString(text, -1) {
		if strings.Contains(m, "@") {
			continue
		}
		if host, valid := normalizeWebsite(m); valid {
			return m, host, true
		}
	}
	if sm := spacedDomainRe.FindStringSubmatch(text); sm != nil {
		candidate := sm[1] + "." + sm[2]
		if host, valid := normalizeWebsite(candidate); valid {
			return sm[0], host, true
		}
	}
	return "", "", false
}

// normalizeWebsite lowercases, joins internal whitespace with dots, strips
// scheme/www and any path, then validates the remaining host+TLD shape.
func normalizeWebsite(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(s, "@") {
		return "", false
	}
	s = strings.Join(strings.Fields(s), ".")
	s = schemeRe.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, ".")
	if !hostRe.MatchString(s) {
		return "", false
	}
	return s, true
}
