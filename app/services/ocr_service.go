package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verdantia/carbontrace/utils"
)

// ExtractionService reads structured invoice data out of an uploaded document
type ExtractionService interface {
	// Extract never fails on a malformed vendor response; it degrades to a
	// low-confidence zeroed result so ingestion can continue.
	Extract(ctx context.Context, data []byte, mimeType, category string) (*ExtractionResult, error)
}

// ExtractionResult is the structured output of document extraction
type ExtractionResult struct {
	Vendor      string    `json:"vendor"`
	Date        time.Time `json:"date"`
	Consumption float64   `json:"consumption"`
	Unit        string    `json:"unit"`
	TotalCost   float64   `json:"total_cost"`
	Currency    string    `json:"currency"`
	Notes       string    `json:"notes"`
	Confidence  string    `json:"confidence"` // high, medium, low
}

// defaultUnits maps category names to the unit assumed when the vendor
// response carries none
var defaultUnits = map[string]string{
	"electricity": "kWh",
	"natural gas": "m3",
	"fuel":        "L",
	"water":       "m3",
	"waste":       "kg",
}

// DefaultUnitForCategory returns the fallback unit for a category name,
// or kWh when the category is unknown
func DefaultUnitForCategory(category string) string {
	if unit, ok := defaultUnits[strings.ToLower(strings.TrimSpace(category))]; ok {
		return unit
	}
	return "kWh"
}

// OCRExtractionService implements ExtractionService against a vision-OCR
// vendor HTTP API
type OCRExtractionService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewOCRExtractionService creates an extraction service backed by the vendor API
func NewOCRExtractionService(baseURL, apiKey string, timeout time.Duration) ExtractionService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OCRExtractionService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type extractionRequest struct {
	Document string `json:"document"` // base64
	MimeType string `json:"mime_type"`
	Category string `json:"category"`
}

type extractionResponse struct {
	Vendor      string  `json:"vendor"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Consumption float64 `json:"consumption"`
	Unit        string  `json:"unit"`
	TotalCost   float64 `json:"total_cost"`
	Currency    string  `json:"currency"`
	Notes       string  `json:"notes"`
	Confidence  string  `json:"confidence"`
}

// Extract sends the document to the vendor and parses the structured reply
func (s *OCRExtractionService) Extract(ctx context.Context, data []byte, mimeType, category string) (*ExtractionResult, error) {
	payload, err := json.Marshal(extractionRequest{
		Document: base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extraction vendor returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}

	var parsed extractionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Vendor replied but the schema did not match; degrade rather than fail
		return lowConfidenceResult(category), nil
	}

	return normalizeResult(parsed, category), nil
}

// normalizeResult maps the vendor payload to an ExtractionResult, filling
// gaps with safe defaults
func normalizeResult(parsed extractionResponse, category string) *ExtractionResult {
	result := &ExtractionResult{
		Vendor:      strings.TrimSpace(parsed.Vendor),
		Consumption: parsed.Consumption,
		Unit:        strings.TrimSpace(parsed.Unit),
		TotalCost:   parsed.TotalCost,
		Currency:    strings.ToUpper(strings.TrimSpace(parsed.Currency)),
		Notes:       strings.TrimSpace(parsed.Notes),
		Confidence:  strings.ToLower(strings.TrimSpace(parsed.Confidence)),
	}

	if parsed.Date != "" {
		if date, err := time.Parse("2006-01-02", parsed.Date); err == nil {
			result.Date = date.UTC()
		}
	}
	if result.Date.IsZero() {
		result.Date = utils.UTCToday()
	}

	if result.Unit == "" {
		result.Unit = DefaultUnitForCategory(category)
	}

	switch result.Confidence {
	case utils.ConfidenceHigh, utils.ConfidenceMedium, utils.ConfidenceLow:
	default:
		result.Confidence = utils.ConfidenceLow
	}

	if result.Consumption <= 0 {
		result.Consumption = 0
		result.Confidence = utils.ConfidenceLow
	}

	return result
}

// lowConfidenceResult is the degraded output for unusable vendor responses
func lowConfidenceResult(category string) *ExtractionResult {
	return &ExtractionResult{
		Date:       utils.UTCToday(),
		Unit:       DefaultUnitForCategory(category),
		Confidence: utils.ConfidenceLow,
	}
}

// MockExtractionService returns canned per-category results for tests and
// local runs
type MockExtractionService struct {
	// Result overrides the canned output when set
	Result *ExtractionResult
	Err    error
}

// NewMockExtractionService creates a mock extraction service
func NewMockExtractionService() *MockExtractionService {
	return &MockExtractionService{}
}

func (m *MockExtractionService) Extract(_ context.Context, _ []byte, _, category string) (*ExtractionResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}

	result := &ExtractionResult{
		Vendor:      "Acme Utilities",
		Date:        utils.UTCToday(),
		Unit:        DefaultUnitForCategory(category),
		TotalCost:   128.40,
		Currency:    "EUR",
		Notes:       "extracted from uploaded invoice",
		Confidence:  utils.ConfidenceHigh,
		Consumption: 450,
	}
	return result, nil
}
