package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/david/parts-broker/internal/catalog"
	"github.com/david/parts-broker/internal/procure"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	snapshot, err := catalog.Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	pricing, err := procure.LoadPricingConfig()
	if err != nil {
		t.Fatalf("failed to load pricing config: %v", err)
	}
	synth := procure.NewSynthesizer(pricing, rand.NewSource(1))
	pipeline := procure.NewPipeline(snapshot, synth, nil, nil)
	return NewServer(snapshot, pipeline)
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %q", body["status"])
	}
}

func TestHandleProcure(t *testing.T) {
	s := testServer(t)
	payload := `{"query": "brake pads", "quantity": 4}`
	req := httptest.NewRequest(http.MethodPost, "/procure", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result procure.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Query != "brake pads" {
		t.Errorf("expected query echo, got %q", result.Query)
	}
	if len(result.Offers) == 0 || result.BestOffer == nil {
		t.Fatal("expected offers and a best offer for brake pads")
	}
	if len(result.Offers) > 10 {
		t.Errorf("offers must be truncated to 10, got %d", len(result.Offers))
	}
}

func TestHandleProcure_InvalidRequest(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"Missing query", `{"quantity": 2}`},
		{"Negative quantity", `{"query": "pads", "quantity": -3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/procure", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleListProducts_CategoryAndLimit(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/products?category=brakes&limit=2", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Products []catalog.Product `json:"products"`
		Total    int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Products) > 2 {
		t.Errorf("expected at most 2 products, got %d", len(body.Products))
	}
	if body.Total < len(body.Products) {
		t.Errorf("total %d smaller than returned page %d", body.Total, len(body.Products))
	}
	for _, p := range body.Products {
		if p.Category != "brakes" {
			t.Errorf("unexpected category %s", p.Category)
		}
	}
}

func TestHandleDebug(t *testing.T) {
	s := testServer(t)
	payload := `{"query": "oil filter"}`
	req := httptest.NewRequest(http.MethodPost, "/debug", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		ParsedQuery   procure.Intent `json:"parsed_query"`
		MatchingCount int            `json:"matching_products_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.ParsedQuery.Category != "filters" {
		t.Errorf("expected keyword category filters, got %s", body.ParsedQuery.Category)
	}
	if body.MatchingCount == 0 {
		t.Error("expected matches for oil filter")
	}
}
