// Package export serializes scanned cards to XLSX, CSV and vCard.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ocrtools/cardscan/internal/entity"
)

// Service produces export bytes for scanned cards.
type Service struct {
	sheet  string
	logger *slog.Logger
}

func NewService(sheetName string, logger *slog.Logger) *Service {
	if sheetName == "" {
		sheetName = "Cards"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sheet: sheetName, logger: logger}
}

var headers = []string{"Name", "Title", "Company", "Email", "Phone", "Website", "Address", "Status", "Scanned At"}

func row(c entity.BusinessCard) []string {
	return []string{
		c.Name, c.Title, c.Company, c.Email, c.Phone, c.Website, c.Address,
		c.Status, c.CreatedAt.Format(time.RFC3339),
	}
}

// CardsXLSX returns an XLSX workbook (as bytes) with one row per card.
func (s *Service) CardsXLSX(cards []entity.BusinessCard) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(s.sheet); index == -1 {
		if _, err := f.NewSheet(s.sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(s.sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(s.sheet, cell, h)
	}
	for r, c := range cards {
		for col, v := range row(c) {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			_ = f.SetCellValue(s.sheet, cell, v)
		}
	}

	// widen the text-heavy columns
	_ = f.SetColWidth(s.sheet, "A", "C", 24)
	_ = f.SetColWidth(s.sheet, "D", "F", 28)
	_ = f.SetColWidth(s.sheet, "G", "G", 48)
	_ = f.SetColWidth(s.sheet, "H", "I", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "rows", len(cards), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// CardsCSV returns an RFC 4180 CSV with a header row.
func (s *Service) CardsCSV(cards []entity.BusinessCard) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, c := range cards {
		if err := w.Write(row(c)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	s.logger.Info("export.csv.ok", "rows", len(cards))
	return buf.Bytes(), nil
}
