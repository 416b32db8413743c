package parser

import (
	"regexp"
	"strings"

	"github.com/ocrtools/cardscan/internal/entity"
)

// Name heuristics.
const (
	nameWindowMin     = 2
	nameWindowMax     = 3
	singleLineNameMin = 2
	singleLineNameMax = 4
	nameMinLen        = 4
	nameMaxLen        = 56
	maxTitleSegments  = 3

	// minimum window score: keeps a penalized span (org/title line, digits)
	// from sneaking in as a name
	nameWindowMinScore = 20
)

// ClassifyLinear runs the linear strategy: field classification over the flat
// ordered line list, with no spatial information.
func ClassifyLinear(rawLines []string) entity.CardDraft {
	lines := cleanLines(rawLines)
	contacts := ExtractContacts(lines)
	lines = contacts.Strip(lines)

	draft := draftFromContacts(contacts)
	fillTextFields(&draft, lines)
	return draft
}

// ClassifyLayout runs the layout strategy over the left- and right-column
// line groups produced by the layout analyzer. Contact tokens are pooled
// across both columns; name/title come from the column where a name is
// found, company/address from the opposite one.
func ClassifyLayout(left, right []Line) (entity.CardDraft, bool) {
	lt, rt := lineTexts(left), lineTexts(right)
	if len(lt) == 0 && len(rt) == 0 {
		return entity.CardDraft{}, false
	}
	all := cleanLines(append(append([]string{}, lt...), rt...))
	contacts := ExtractContacts(all)

	cl := contacts.Strip(cleanLines(lt))
	cr := contacts.Strip(cleanLines(rt))

	var dl, dr entity.CardDraft
	fillTextFields(&dl, cl)
	fillTextFields(&dr, cr)

	draft := draftFromContacts(contacts)
	nameCol, otherCol := pickNameColumn(dl, dr)
	draft.Name = nameCol.Name
	draft.Title = nameCol.Title
	draft.Company = otherCol.Company
	draft.Address = otherCol.Address
	if draft.Company == "" {
		draft.Company = nameCol.Company
	}
	if draft.Address == "" {
		draft.Address = nameCol.Address
	}
	if draft.Title == "" {
		draft.Title = otherCol.Title
	}
	return draft, true
}

// Merge combines a layout draft with a linear draft field by field,
// preferring the layout draft's non-empty values. Both drafts are computed
// fully before merging; strategies never share internal state.
func Merge(layout, linear entity.CardDraft) entity.CardDraft {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return entity.CardDraft{
		Name:    pick(layout.Name, linear.Name),
		Title:   pick(layout.Title, linear.Title),
		Company: pick(layout.Company, linear.Company),
		Email:   pick(layout.Email, linear.Email),
		Phone:   pick(layout.Phone, linear.Phone),
		Website: pick(layout.Website, linear.Website),
		Address: pick(layout.Address, linear.Address),
	}
}

// pickNameColumn decides which column supplies name/title. The column whose
// classification produced a name (and ideally a title) wins; ties go to the
// left column for determinism.
func pickNameColumn(dl, dr entity.CardDraft) (nameCol, otherCol entity.CardDraft) {
	score := func(d entity.CardDraft) int {
		s := 0
		if d.Name != "" {
			s += 2
		}
		if d.Title != "" {
			s++
		}
		return s
	}
	if score(dr) > score(dl) {
		return dr, dl
	}
	return dl, dr
}

func cleanLines(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = CleanSemanticLine(ln)
		if isNoiseLine(ln) {
			continue
		}
		out = append(out, ln)
	}
	return out
}

func lineTexts(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, ln.Text)
	}
	return out
}

func draftFromContacts(c Contacts) entity.CardDraft {
	var d entity.CardDraft
	if len(c.Emails) > 0 {
		d.Email = c.Emails[0]
	}
	if len(c.Phones) > 0 {
		d.Phone = c.Phones[0]
	}
	d.Website = c.Website
	return d
}

// fillTextFields assigns name, title, company and address from cleaned,
// contact-stripped lines.
func fillTextFields(d *entity.CardDraft, lines []string) {
	name := findName(lines)
	if name != "" {
		lines = stripName(lines, name)
	}

	segments := splitSegments(lines)
	title, titleUsed := pickTitle(segments)
	company, companyIdx := pickCompany(segments, titleUsed)
	address := pickAddress(segments, titleUsed, companyIdx, company)

	d.Name = CleanupFieldText(name)
	d.Title = CleanupFieldText(title)
	d.Company = CleanupFieldText(company)
	d.Address = CleanupFieldText(address)
}

// findName tries three strategies in order; the first success wins.
func findName(lines []string) string {
	if n := nameByPattern(lines); n != "" {
		return n
	}
	if n := nameByWindow(lines); n != "" {
		return n
	}
	return nameBySingleLine(lines)
}

// nameByPattern: 2-3 consecutive capitalized words without a stopword.
func nameByPattern(lines []string) string {
	for _, ln := range lines {
		for _, m := range nameRe.FindAllString(ln, -1) {
			if !containsNameStop(m) {
				return m
			}
		}
	}
	return ""
}

// nameByWindow scores every 2-3 word span of every non-address line: longer
// spans and strictly-title-cased words score up, spans drawn from a line that
// also looks like a title/company or carries a digit/@ score down.
func nameByWindow(lines []string) string {
	best, bestScore := "", nameWindowMinScore-1
	for _, ln := range lines {
		if IsAddressLine(ln) {
			continue
		}
		linePenalty := 0
		if IsTitleLine(ln) || IsOrgLine(ln) {
			linePenalty += 15
		}
		if hasDigit(ln) || strings.Contains(ln, "@") {
			linePenalty += 20
		}
		tokens := strings.Fields(ln)
		for width := nameWindowMax; width >= nameWindowMin; width-- {
			for i := 0; i+width <= len(tokens); i++ {
				span := tokens[i : i+width]
				score := scoreNameSpan(span) - linePenalty
				if score > bestScore {
					bestScore = score
					best = strings.Join(span, " ")
				}
			}
		}
	}
	return best
}

func scoreNameSpan(span []string) int {
	score := 10 * len(span)
	for _, tok := range span {
		if !capWordRe.MatchString(tok) {
			return 0
		}
		if strictCapRe.MatchString(tok) {
			score += 5
		}
	}
	if containsNameStop(strings.Join(span, " ")) {
		return 0
	}
	return score
}

// nameBySingleLine accepts a whole line of 2-4 capitalized words that looks
// like nothing else.
func nameBySingleLine(lines []string) string {
	for _, ln := range lines {
		if len(ln) < nameMinLen || len(ln) > nameMaxLen {
			continue
		}
		if hasDigit(ln) || strings.Contains(ln, "@") {
			continue
		}
		if IsTitleLine(ln) || IsOrgLine(ln) || IsAddressLine(ln) {
			continue
		}
		tokens := strings.Fields(ln)
		if len(tokens) < singleLineNameMin || len(tokens) > singleLineNameMax {
			continue
		}
		allCap := true
		for _, tok := range tokens {
			if !capWordRe.MatchString(tok) {
				allCap = false
				break
			}
		}
		if allCap {
			return ln
		}
	}
	return ""
}

// stripName removes the chosen name from every remaining line before further
// classification.
func stripName(lines []string, name string) []string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name))
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = NormalizeLine(re.ReplaceAllString(ln, " "))
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// splitSegments splits the remaining lines on commas into trimmed segments.
func splitSegments(lines []string) []string {
	var segs []string
	for _, ln := range lines {
		for _, part := range strings.Split(ln, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				segs = append(segs, part)
			}
		}
	}
	return segs
}

// pickTitle keeps segments matching title vocabulary (and not looking like an
// address), trims each to start at its first anchor keyword, and joins up to
// three of them.
func pickTitle(segments []string) (string, map[int]bool) {
	used := map[int]bool{}
	var kept []string
	for i, seg := range segments {
		if len(kept) >= maxTitleSegments {
			break
		}
		if !IsTitleLine(seg) || IsAddressLine(seg) {
			continue
		}
		trimmed := trimToTitleAnchor(seg)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
		used[i] = true
	}
	return strings.Join(kept, ", "), used
}

// trimToTitleAnchor drops everything before the first recognized title
// keyword, so "Mr. John Senior Sales Manager" becomes "Senior Sales Manager".
func trimToTitleAnchor(seg string) string {
	loc := titleRe.FindStringSubmatchIndex(seg)
	if loc == nil {
		return seg
	}
	// group 2 is the keyword itself (group 1 is the left boundary)
	return strings.TrimSpace(seg[loc[4]:])
}

// pickCompany prefers the first segment with organization vocabulary that is
// not address-looking, falling back to the first short segment that is not
// address-like, title-like, or person-shaped.
func pickCompany(segments []string, titleUsed map[int]bool) (string, int) {
	for i, seg := range segments {
		if titleUsed[i] {
			continue
		}
		if IsOrgLine(seg) && !IsAddressLine(seg) {
			return seg, i
		}
	}
	for i, seg := range segments {
		if titleUsed[i] {
			continue
		}
		if len(seg) > fieldMaxCompanyLen {
			continue
		}
		if IsAddressLine(seg) || IsTitleLine(seg) || isPersonish(seg) {
			continue
		}
		return seg, i
	}
	return "", -1
}

// isPersonish guards the company fallback against picking up a second name
// fragment: 2-5 words with at least two strictly title-cased among them.
func isPersonish(seg string) bool {
	tokens := strings.Fields(seg)
	if len(tokens) < 2 || len(tokens) > 5 {
		return false
	}
	strict := 0
	for _, tok := range tokens {
		if strictCapRe.MatchString(tok) {
			strict++
		}
	}
	return strict >= 2
}

// pickAddress joins address-looking segments; when none match it falls back
// to every remaining non-title segment. A company string that is a literal
// prefix of the result is stripped off, guarding against company bleeding
// into a comma-joined address when punctuation was lost.
func pickAddress(segments []string, titleUsed map[int]bool, companyIdx int, company string) string {
	var addressy, leftovers []string
	for i, seg := range segments {
		if titleUsed[i] || i == companyIdx {
			continue
		}
		if IsAddressLine(seg) {
			addressy = append(addressy, seg)
		} else {
			leftovers = append(leftovers, seg)
		}
	}
	chosen := addressy
	if len(chosen) == 0 {
		chosen = leftovers
	}
	addr := strings.Join(chosen, ", ")
	if company != "" && strings.HasPrefix(addr, company) {
		addr = strings.TrimSpace(strings.TrimPrefix(addr, company))
		addr = strings.TrimLeft(addr, ", ")
	}
	return addr
}
