package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/carbontrace/utils"
)

func TestDefaultUnitForCategory(t *testing.T) {
	assert.Equal(t, "kWh", DefaultUnitForCategory("electricity"))
	assert.Equal(t, "m3", DefaultUnitForCategory("Natural Gas"))
	assert.Equal(t, "L", DefaultUnitForCategory("  fuel  "))
	assert.Equal(t, "kg", DefaultUnitForCategory("waste"))
	assert.Equal(t, "kWh", DefaultUnitForCategory("something else"))
}

func TestOCRExtractionService(t *testing.T) {
	ctx := context.Background()
	document := []byte("%PDF-1.4 invoice")

	t.Run("ParsesVendorResponse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/extract", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"vendor": "  Iberdrola  ",
				"date": "2024-03-15",
				"consumption": 450,
				"unit": "kWh",
				"total_cost": 128.4,
				"currency": "eur",
				"notes": "monthly electricity bill",
				"confidence": "HIGH"
			}`))
		}))
		defer server.Close()

		service := NewOCRExtractionService(server.URL, "test-key", 5*time.Second)
		result, err := service.Extract(ctx, document, "application/pdf", "electricity")
		require.NoError(t, err)

		assert.Equal(t, "Iberdrola", result.Vendor)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), result.Date)
		assert.Equal(t, float64(450), result.Consumption)
		assert.Equal(t, "kWh", result.Unit)
		assert.Equal(t, "EUR", result.Currency)
		assert.Equal(t, utils.ConfidenceHigh, result.Confidence)
	})

	t.Run("MalformedResponseDegradesToLowConfidence", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		service := NewOCRExtractionService(server.URL, "test-key", 5*time.Second)
		result, err := service.Extract(ctx, document, "application/pdf", "electricity")
		require.NoError(t, err)

		assert.Equal(t, utils.ConfidenceLow, result.Confidence)
		assert.Equal(t, float64(0), result.Consumption)
		assert.Equal(t, "kWh", result.Unit)
		assert.False(t, result.Date.IsZero())
	})

	t.Run("VendorErrorStatusFails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		service := NewOCRExtractionService(server.URL, "test-key", 5*time.Second)
		_, err := service.Extract(ctx, document, "application/pdf", "electricity")
		assert.Error(t, err)
	})

	t.Run("MissingUnitFallsBackToCategoryDefault", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"consumption": 12, "confidence": "medium"}`))
		}))
		defer server.Close()

		service := NewOCRExtractionService(server.URL, "test-key", 5*time.Second)
		result, err := service.Extract(ctx, document, "application/pdf", "natural gas")
		require.NoError(t, err)

		assert.Equal(t, "m3", result.Unit)
		assert.Equal(t, utils.ConfidenceMedium, result.Confidence)
	})
}

func TestNormalizeResult(t *testing.T) {
	t.Run("UnknownConfidenceBecomesLow", func(t *testing.T) {
		result := normalizeResult(extractionResponse{Consumption: 10, Confidence: "very sure"}, "electricity")
		assert.Equal(t, utils.ConfidenceLow, result.Confidence)
	})

	t.Run("NegativeConsumptionZeroedAndDowngraded", func(t *testing.T) {
		result := normalizeResult(extractionResponse{Consumption: -5, Confidence: "high"}, "electricity")
		assert.Equal(t, float64(0), result.Consumption)
		assert.Equal(t, utils.ConfidenceLow, result.Confidence)
	})

	t.Run("UnparseableDateFallsBackToToday", func(t *testing.T) {
		result := normalizeResult(extractionResponse{Consumption: 10, Date: "15/03/2024", Confidence: "high"}, "electricity")
		assert.Equal(t, utils.UTCToday(), result.Date)
	})
}

func TestMockExtractionService(t *testing.T) {
	ctx := context.Background()

	t.Run("CannedResultIsHighConfidence", func(t *testing.T) {
		mock := NewMockExtractionService()
		result, err := mock.Extract(ctx, []byte("doc"), "application/pdf", "electricity")
		require.NoError(t, err)

		assert.Equal(t, utils.ConfidenceHigh, result.Confidence)
		assert.Equal(t, float64(450), result.Consumption)
		assert.Equal(t, "kWh", result.Unit)
	})

	t.Run("OverrideResult", func(t *testing.T) {
		mock := NewMockExtractionService()
		mock.Result = &ExtractionResult{Confidence: utils.ConfidenceMedium}

		result, err := mock.Extract(ctx, []byte("doc"), "application/pdf", "electricity")
		require.NoError(t, err)
		assert.Equal(t, utils.ConfidenceMedium, result.Confidence)
	})
}
