package procure

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/david/parts-broker/internal/catalog"
)

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	products := []byte(`{"products": [
		{"sku": "BRK-001", "name": "Premium Ceramic Brake Pads", "category": "brakes", "brand": "Bosch"},
		{"sku": "BRK-002", "name": "Vented Brake Rotor", "category": "brakes", "brand": "Brembo"},
		{"sku": "FLT-001", "name": "Engine Air Filter", "category": "filters", "brand": "Mann-Filter"}
	]}`)
	suppliers := []byte(`{"suppliers": [
		{"id": "supplier_1", "name": "AutoParts Direct", "rating": 4.5, "delivery_time": "2-3 days",
		 "bulk_discount": {}, "payment_terms": "Net 30", "shipping_cost": 25.0, "free_shipping_threshold": 500.0},
		{"id": "supplier_8", "name": "Discount Parts Depot", "rating": 3.9, "delivery_time": "4-6 days",
		 "bulk_discount": {"25+": 0.12}, "payment_terms": "Net 60", "shipping_cost": 12.0, "free_shipping_threshold": 250.0}
	]}`)

	snap, err := catalog.Parse(products, suppliers)
	if err != nil {
		t.Fatalf("failed to build test snapshot: %v", err)
	}
	return snap
}

func testPipeline(t *testing.T, resolver IntentResolver, recommender Recommender) *Pipeline {
	t.Helper()
	synth := NewSynthesizer(testPricingConfig(), rand.NewSource(1))
	return NewPipeline(testSnapshot(t), synth, resolver, recommender)
}

func TestProcess_EndToEnd(t *testing.T) {
	p := testPipeline(t, nil, nil)

	result, err := p.Process(context.Background(), Request{Query: "brake pads", Quantity: 4})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if result.Query != "brake pads" {
		t.Errorf("expected query echo, got %q", result.Query)
	}
	if !strings.HasPrefix(result.RequestID, "REQ_") {
		t.Errorf("expected REQ_ prefixed request id, got %q", result.RequestID)
	}
	if result.TotalSuppliersContacted != 2 {
		t.Errorf("expected 2 suppliers contacted, got %d", result.TotalSuppliersContacted)
	}
	if len(result.Offers) == 0 {
		t.Fatal("expected offers: brakes availability always covers quantity 4")
	}
	if result.BestOffer == nil {
		t.Fatal("expected a best offer")
	}
	if result.BestOffer.TotalCost != result.Offers[0].TotalCost {
		t.Error("best offer should be the first ranked offer")
	}
	for i := 1; i < len(result.Offers); i++ {
		if result.Offers[i].TotalCost < result.Offers[i-1].TotalCost {
			t.Fatal("offers not sorted ascending by total cost")
		}
	}
	for _, o := range result.Offers {
		if o.QuantityAvailable < 4 {
			t.Errorf("offer from %s has availability %d < requested 4", o.SupplierID, o.QuantityAvailable)
		}
	}
	if result.ProcessingTime < 0 {
		t.Error("expected non-negative processing time")
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

func TestProcess_NoMatchShortCircuits(t *testing.T) {
	// A recommender that must not be called: the pipeline short-circuits
	// before ranking when nothing matches.
	called := false
	rec := recommenderFunc(func() { called = true })

	p := testPipeline(t, nil, rec)
	result, err := p.Process(context.Background(), Request{Query: "flux capacitor"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(result.Offers) != 0 {
		t.Errorf("expected no offers, got %d", len(result.Offers))
	}
	if result.BestOffer != nil {
		t.Error("expected nil best offer")
	}
	if result.TotalSuppliersContacted != 0 {
		t.Errorf("expected 0 suppliers contacted, got %d", result.TotalSuppliersContacted)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != recNoProductMatch {
		t.Errorf("expected %q, got %v", recNoProductMatch, result.Recommendations)
	}
	if called {
		t.Error("recommender must not run when no products match")
	}
}

type recommenderFunc func()

func (f recommenderFunc) Recommend(context.Context, string, Intent, []OfferSummary) ([]string, error) {
	f()
	return []string{"line"}, nil
}

func TestProcess_InvalidRequests(t *testing.T) {
	p := testPipeline(t, nil, nil)

	tests := []struct {
		name string
		req  Request
	}{
		{"Empty query", Request{Query: "   "}},
		{"Negative quantity", Request{Query: "brake pads", Quantity: -1}},
		{"Negative max price", Request{Query: "brake pads", MaxPrice: -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestProcess_SKUOverridePinsProduct(t *testing.T) {
	p := testPipeline(t, nil, nil)

	result, err := p.Process(context.Background(), Request{Query: "anything at all", SKU: "FLT-001", Quantity: 2})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	for _, o := range result.Offers {
		if o.SKU != "FLT-001" {
			t.Fatalf("expected only FLT-001 offers, got %s", o.SKU)
		}
	}
	if len(result.Offers) == 0 {
		t.Fatal("expected offers for pinned SKU")
	}
}

func TestProcess_UnknownSKUYieldsNoMatch(t *testing.T) {
	p := testPipeline(t, nil, nil)

	result, err := p.Process(context.Background(), Request{Query: "brake pads", SKU: "NOPE-999"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Offers) != 0 || result.BestOffer != nil {
		t.Fatal("expected empty result for unknown sku")
	}
}

func TestProcess_CategoryOverride(t *testing.T) {
	// Resolver says brakes; the explicit request category wins.
	resolver := stubResolver{intent: Intent{Category: "brakes", ProductName: "filter"}}
	p := testPipeline(t, resolver, nil)

	result, err := p.Process(context.Background(), Request{Query: "need filters", Category: "filters"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Offers) == 0 {
		t.Fatal("expected offers in the overridden category")
	}
	for _, o := range result.Offers {
		if o.SKU != "FLT-001" {
			t.Fatalf("expected filter offers only, got %s", o.SKU)
		}
	}
}

func TestProcess_MaxPriceFilter(t *testing.T) {
	p := testPipeline(t, nil, nil)

	// Brakes unit prices are 45.00 (supplier_1) and 38.25 (supplier_8).
	result, err := p.Process(context.Background(), Request{Query: "brake pads", Quantity: 4, MaxPrice: 40.0})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Offers) == 0 {
		t.Fatal("expected the cheaper supplier to survive the max_price filter")
	}
	for _, o := range result.Offers {
		if o.UnitPrice > 40.0 {
			t.Errorf("offer from %s breaches max_price: %.2f", o.SupplierID, o.UnitPrice)
		}
	}
}

func TestProcess_ExpressDeliveryFilter(t *testing.T) {
	p := testPipeline(t, nil, nil)

	// supplier_8 delivers in 5 days and must be filtered out.
	result, err := p.Process(context.Background(), Request{Query: "brake pads", Quantity: 4, DeliveryPriority: "express"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	for _, o := range result.Offers {
		if o.DeliveryDays > 3 {
			t.Errorf("offer from %s too slow for express: %d days", o.SupplierID, o.DeliveryDays)
		}
	}
}

func TestProcess_RecommenderFailureUsesFallback(t *testing.T) {
	p := testPipeline(t, nil, failingRecommender{})

	result, err := p.Process(context.Background(), Request{Query: "brake pads", Quantity: 1})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != recGenericAdvice {
		t.Errorf("expected generic fallback recommendation, got %v", result.Recommendations)
	}
}

func TestProcess_ResolverQuantityUsedWhenRequestOmitsIt(t *testing.T) {
	resolver := stubResolver{intent: Intent{Category: "brakes", ProductName: "brake", Quantity: 30}}
	p := testPipeline(t, resolver, nil)

	result, err := p.Process(context.Background(), Request{Query: "thirty brake pads"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// supplier_8 grants its 25+ tier at quantity 30.
	for _, o := range result.Offers {
		if o.SupplierID == "supplier_8" && o.BulkDiscount != 0.12 {
			t.Errorf("expected 12%% discount at quantity 30, got %.2f", o.BulkDiscount)
		}
	}
}
