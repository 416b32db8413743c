package export

import (
	"bytes"
	"strings"

	"github.com/ocrtools/cardscan/internal/entity"
)

// CardsVCF serializes cards as a vCard 3.0 stream, one VCARD per card.
// Empty fields are omitted.
func (s *Service) CardsVCF(cards []entity.BusinessCard) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range cards {
		writeVCard(&buf, c)
	}
	s.logger.Info("export.vcf.ok", "rows", len(cards))
	return buf.Bytes(), nil
}

func writeVCard(buf *bytes.Buffer, c entity.BusinessCard) {
	line := func(key, value string) {
		if value == "" {
			return
		}
		buf.WriteString(key)
		buf.WriteString(":")
		buf.WriteString(escapeVCard(value))
		buf.WriteString("\r\n")
	}

	buf.WriteString("BEGIN:VCARD\r\n")
	buf.WriteString("VERSION:3.0\r\n")
	fn := c.Name
	if fn == "" {
		fn = c.Company
	}
	line("FN", fn)
	if c.Name != "" {
		buf.WriteString("N:" + structuredName(c.Name) + "\r\n")
	}
	line("ORG", c.Company)
	line("TITLE", c.Title)
	line("EMAIL;TYPE=WORK", c.Email)
	line("TEL;TYPE=WORK,VOICE", c.Phone)
	if c.Website != "" {
		line("URL", "http://"+c.Website)
	}
	if c.Address != "" {
		buf.WriteString("ADR;TYPE=WORK:;;" + escapeVCard(c.Address) + ";;;;\r\n")
	}
	line("UID", c.ID.String())
	buf.WriteString("END:VCARD\r\n")
}

// structuredName maps "First [Middle] Last" onto the N component order
// (family;given;additional;;).
func structuredName(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return ";;;;"
	case 1:
		return escapeVCard(parts[0]) + ";;;;"
	default:
		family := escapeVCard(parts[len(parts)-1])
		given := escapeVCard(parts[0])
		additional := escapeVCard(strings.Join(parts[1:len(parts)-1], " "))
		return family + ";" + given + ";" + additional + ";;"
	}
}

// escapeVCard escapes the characters RFC 2426 reserves in text values.
func escapeVCard(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
		"\r", "",
	)
	return r.Replace(s)
}
