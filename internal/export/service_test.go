package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ocrtools/cardscan/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleCards() []entity.BusinessCard {
	return []entity.BusinessCard{
		{
			ID: uuid.MustParse("11111111-2222-3333-4444-555555555555"),
			CardDraft: entity.CardDraft{
				Name: "John Smith", Title: "Senior Engineer", Company: "Acme Corp",
				Email: "john@acme.com", Phone: "+1 415 555 0100",
				Website: "acme.com", Address: "123 Main Street, Springfield",
			},
			Score:     218,
			Status:    "OK",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
			CardDraft: entity.CardDraft{Company: "Globex LLC"},
			Score:     30,
			Status:    "NEEDS_REVIEW",
			CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestCardsCSV(t *testing.T) {
	b, err := NewService("Cards", testLogger()).CardsCSV(sampleCards())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, headers, records[0])
	assert.Equal(t, "John Smith", records[1][0])
	assert.Equal(t, "123 Main Street, Springfield", records[1][6])
	assert.Equal(t, "NEEDS_REVIEW", records[2][7])
}

func TestCardsXLSXRoundTrip(t *testing.T) {
	b, err := NewService("Scans", testLogger()).CardsXLSX(sampleCards())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Scans")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "John Smith", rows[1][0])
	assert.Equal(t, "Globex LLC", rows[2][2])
}

func TestCardsXLSXEmpty(t *testing.T) {
	b, err := NewService("", testLogger()).CardsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Cards")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestCardsVCF(t *testing.T) {
	b, err := NewService("Cards", testLogger()).CardsVCF(sampleCards())
	require.NoError(t, err)
	s := string(b)

	assert.Equal(t, 2, strings.Count(s, "BEGIN:VCARD\r\n"))
	assert.Equal(t, 2, strings.Count(s, "END:VCARD\r\n"))
	assert.Contains(t, s, "FN:John Smith\r\n")
	assert.Contains(t, s, "N:Smith;John;;;\r\n")
	assert.Contains(t, s, "ORG:Acme Corp\r\n")
	assert.Contains(t, s, "EMAIL;TYPE=WORK:john@acme.com\r\n")
	assert.Contains(t, s, "URL:http://acme.com\r\n")
	// comma in the address must be escaped
	assert.Contains(t, s, "ADR;TYPE=WORK:;;123 Main Street\\, Springfield;;;;\r\n")
	// a company-only card falls back to ORG for FN
	assert.Contains(t, s, "FN:Globex LLC\r\n")
}

func TestCardsVCFEscaping(t *testing.T) {
	cards := []entity.BusinessCard{{
		ID:        uuid.New(),
		CardDraft: entity.CardDraft{Name: "A; B", Company: "C,D\\E"},
	}}
	b, err := NewService("Cards", testLogger()).CardsVCF(cards)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "FN:A\\; B\r\n")
	assert.Contains(t, s, "ORG:C\\,D\\\\E\r\n")
}
