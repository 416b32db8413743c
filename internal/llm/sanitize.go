package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"
)

var (
	reSanEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reSanDigit = regexp.MustCompile(`\d`)
)

// NormalizeAndSanitizeJSON cleans a model response so the strict schema can
// still validate:
//   - drops null/empty fields and unknown keys
//   - trims strings, lowercases email, strips mailto:/scheme prefixes
//   - drops an email that does not validate, a website containing '@',
//     a phone with an implausible digit count
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	drop := func(k, why string) {
		delete(m, k)
		dropped = append(dropped, k+"("+why+")")
	}

	// 1) trim every known string field; drop empties and nulls
	fields := []string{"name", "title", "company", "email", "phone", "website", "address"}
	for _, k := range fields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				drop(k, "empty")
				continue
			}
			m[k] = s
		case nil:
			drop(k, "null")
		default:
			drop(k, "type")
		}
	}

	// 2) contact-field shape repair
	if v, ok := m["email"].(string); ok {
		e := strings.ToLower(strings.TrimPrefix(v, "mailto:"))
		if !reSanEmail.MatchString(e) {
			drop("email", "invalid")
		} else {
			m["email"] = e
		}
	}
	if v, ok := m["website"].(string); ok {
		w := strings.ToLower(v)
		w = strings.TrimPrefix(strings.TrimPrefix(w, "https://"), "http://")
		w = strings.TrimPrefix(w, "www.")
		w = strings.TrimRight(w, "/")
		if w == "" || strings.Contains(w, "@") || !strings.Contains(w, ".") {
			drop("website", "invalid")
		} else {
			m["website"] = w
		}
	}
	if v, ok := m["phone"].(string); ok {
		n := len(reSanDigit.FindAllString(v, -1))
		if n < 7 || n > 20 {
			drop("phone", "digits")
		}
	}

	// 3) remove unknown keys (additionalProperties=false friendliness)
	allowed := map[string]struct{}{
		"name": {}, "title": {}, "company": {}, "email": {}, "phone": {},
		"website": {}, "address": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			drop(k, "unknown")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
