package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// Keywords is the bilingual (English/Russian) vocabulary that drives the
// rule-based classifier. Extending language coverage means extending these
// lists; the control flow never changes.
type Keywords struct {
	Title    []string // job-title words, incl. seniority modifiers
	Org      []string // organization words and legal-form suffixes
	Address  []string // street/suite/building/postal vocabulary
	NameStop []string // words that disqualify a span as a person name
}

// DefaultKeywords covers the vocabulary seen on English and Russian cards,
// with a bias toward diplomatic and corporate wording.
var DefaultKeywords = Keywords{
	Title: []string{
		"director", "manager", "engineer", "officer", "head", "chief",
		"president", "specialist", "consultant", "counsellor", "counselor",
		"advisor", "adviser", "assistant", "attache", "attaché", "secretary",
		"coordinator", "attorney", "partner", "founder", "analyst",
		"representative", "developer", "designer", "architect", "accountant",
		"ceo", "cto", "cfo", "coo", "vp", "affairs",
		"senior", "junior", "deputy", "lead", "executive", "principal",
		"sales", "marketing",
		"директор", "менеджер", "инженер", "руководитель", "начальник",
		"специалист", "консультант", "советник", "атташе", "секретарь",
		"заместитель", "представитель", "координатор",
		"бухгалтер", "юрист", "партнер", "партнёр", "основатель", "ведущий",
		"старший", "младший", "главный", "генеральный",
	},
	Org: []string{
		"embassy", "consulate", "ministry", "department", "llc", "ltd", "inc",
		"corp", "co", "gmbh", "plc", "group", "company", "agency", "bank",
		"university", "institute", "association", "holding", "foundation",
		"solutions", "technologies", "systems", "studio", "bureau",
		"посольство", "консульство", "министерство", "ооо", "зао", "оао",
		"ао", "ип", "пао", "компания", "группа", "банк", "университет",
		"институт", "агентство", "холдинг", "фонд", "бюро", "завод",
	},
	Address: []string{
		"street", "st", "avenue", "ave", "road", "rd", "boulevard", "blvd",
		"lane", "drive", "suite", "ste", "floor", "fl", "building", "bld",
		"office", "room", "box", "postal", "zip",
		"улица", "ул", "проспект", "просп", "пр-т", "переулок", "пер",
		"шоссе", "набережная", "наб", "дом", "офис", "этаж", "корпус",
		"корп", "стр", "город", "г", "область", "обл", "индекс",
	},
	NameStop: []string{
		"embassy", "consulate", "ministry", "department", "office",
		"international", "republic", "federation", "first", "second", "third",
		"corp", "inc", "llc", "ltd", "gmbh", "company", "group", "bank",
		"посольство", "консульство", "министерство", "отдел", "республика",
		"федерация", "первый", "второй", "третий", "компания", "группа",
	},
}

// wordAltRe builds a (?i)\b(w1|w2|...)\b alternation from a keyword list.
func wordAltRe(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)(^|[^\p{L}])(` + strings.Join(quoted, "|") + `)($|[^\p{L}])`)
}

var (
	titleRe    = wordAltRe(DefaultKeywords.Title)
	orgRe      = wordAltRe(DefaultKeywords.Org)
	addrRe     = wordAltRe(DefaultKeywords.Address)
	nameStopRe = wordAltRe(DefaultKeywords.NameStop)

	// 2-3 consecutive capitalized (Latin or Cyrillic, accents allowed) words.
	nameRe = regexp.MustCompile(`\p{Lu}[\p{L}'’-]+(?: \p{Lu}[\p{L}'’-]+){1,2}`)

	// One strictly title-cased word: capital followed by lowercase only.
	strictCapRe = regexp.MustCompile(`^\p{Lu}[\p{Ll}'’-]+$`)
	// Looser capitalized-word shape, all-caps allowed.
	capWordRe = regexp.MustCompile(`^\p{Lu}[\p{L}'’.-]*$`)

	// "Word, Word" two-clause shape, used by the broad address test.
	twoClauseRe = regexp.MustCompile(`^\p{Lu}[\p{L}-]+,\s*\p{Lu}[\p{L}-]+$`)

	emailRe       = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	strictEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	phoneRe    = regexp.MustCompile(`\d[\d\s().-]{6,}\d`)
	phoneExtRe = regexp.MustCompile(`(?i)[\s.,]*(?:ext|ex|x)\.?\s*\d{1,5}\s*$`)

	urlRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,6}(?:/[^\s,;]*)?`)
	// "example com" -> candidate for dotted repair.
	spacedDomainRe = regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9-]{1,})\s+(com|net|org|info|biz|io|co|ru|su|us|uk|de|fr|eu)\b`)
	hostRe         = regexp.MustCompile(`^(?:[a-z0-9][a-z0-9-]*\.)+[a-z]{2,6}$`)
	schemeRe       = regexp.MustCompile(`(?i)^https?://`)

	digitRe = regexp.MustCompile(`\d`)
)

// IsTitleLine reports whether s contains job-title vocabulary.
func IsTitleLine(s string) bool { return titleRe.MatchString(s) }

// IsOrgLine reports whether s contains organization vocabulary.
func IsOrgLine(s string) bool { return orgRe.MatchString(s) }

// IsAddressLine is deliberately broad: address vocabulary, OR a digit plus a
// letter in the same line, OR a simple "Word, Word" two-clause shape. Erring
// toward capturing structured-looking text beats dropping it.
func IsAddressLine(s string) bool {
	if addrRe.MatchString(s) {
		return true
	}
	if digitRe.MatchString(s) && hasLetter(s) {
		return true
	}
	return twoClauseRe.MatchString(s)
}

func containsNameStop(s string) bool { return nameStopRe.MatchString(s) }

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool { return digitRe.MatchString(s) }

// Noise-line rejection thresholds. Empirically tuned; they encode heuristics,
// not ground truth.
const (
	noiseMaxLineLen    = 220
	noiseMaxTokens     = 35
	noiseMinAlpha      = 6
	noiseMaxWeird      = 6
	noiseShortAlpha    = 20
	noiseWeirdRatio    = 0.6
	noiseLongLineLen   = 120
	plainPunct         = `.,;:()[]/&+'’"-–—@#№*!?`
	fieldMaxCompanyLen = 64
)

// isNoiseLine identifies recognizer garbage (misread borders, logos) that
// should never reach field classification.
func isNoiseLine(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	if len(s) > noiseMaxLineLen {
		return true
	}
	if len(strings.Fields(s)) > noiseMaxTokens {
		return true
	}
	alpha, weird := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			alpha++
		case unicode.IsDigit(r), unicode.IsSpace(r):
		case strings.ContainsRune(plainPunct, r):
		default:
			weird++
		}
	}
	if alpha < noiseMinAlpha && weird > noiseMaxWeird {
		return true
	}
	if alpha < noiseShortAlpha && float64(weird) > noiseWeirdRatio*float64(alpha) {
		return true
	}
	if len(s) > noiseLongLineLen &&
		!hasDigit(s) && !strings.Contains(s, "@") && !phoneRe.MatchString(s) &&
		!titleRe.MatchString(s) && !orgRe.MatchString(s) && !addrRe.MatchString(s) {
		return true
	}
	return false
}
