package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ocrtools/cardscan/internal/llm"
)

// ExtractFields implements llm.FieldExtractor via chat/completions. When the
// heuristic extraction scored low and a file path is available, the card
// photo is attached as a data URL so the multimodal model reads the image
// directly instead of relying on shattered OCR text.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.CardFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	attach, dataURL, mimeType := llm.ShouldAttachImage(req)

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.OCRText),
		"attach_image", attach,
		"prep_score", req.PrepScore,
	)

	schema := llm.BuildCardJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt()},
			{"role": "user", "content": userContent(req, attach, dataURL)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}
	if attach {
		c.log.Debug("llm.extract.vision", "req_id", rid, "mime", mimeType)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body,
		map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}, c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.CardFields{}, raw, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return llm.CardFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "raw", string(raw))
		return llm.CardFields{}, raw, fmt.Errorf("no choices in openai response")
	}
	rawContent := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		if !c.cfg.LenientOptional {
			c.log.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
			return llm.CardFields{}, rawContent, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, dropped, sErr := llm.NormalizeAndSanitizeJSON(rawContent, c.log)
		if sErr != nil {
			c.log.Error("llm.extract.sanitize_failed", "req_id", rid, "error", sErr)
			return llm.CardFields{}, rawContent, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(rawContent))
			return llm.CardFields{}, rawContent, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		rawContent = cleaned
	}

	var out llm.CardFields
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return llm.CardFields{}, rawContent, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"name", out.Name,
		"company", out.Company,
		"has_email", out.Email != "",
		"has_phone", out.Phone != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func systemPrompt() string {
	parts := []string{
		"You are a business card parser. Return ONLY JSON that matches the JSON Schema provided.",
		"Extract the person's name, job title, company, email, phone, website and postal address from the card.",
		"The card may mix English and Russian; keep each field in its original language.",
		"Omit any field that is not present on the card. Never output null and never invent values.",
		"Use a plain host for 'website' (no scheme, no trailing slash).",
		"Keep the phone exactly as printed, minus extensions.",
	}
	return strings.Join(parts, " ")
}

func userContent(req llm.ExtractRequest, attach bool, dataURL string) any {
	var b strings.Builder
	b.WriteString("Filename: ")
	b.WriteString(req.FilenameHint)
	b.WriteString("\n\nOCR text (first ~3k chars):\n")
	if len(req.OCRText) > 3000 {
		b.WriteString(req.OCRText[:3000])
	} else {
		b.WriteString(req.OCRText)
	}
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	if !attach {
		return b.String()
	}
	return []map[string]any{
		{"type": "text", "text": b.String()},
		{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
