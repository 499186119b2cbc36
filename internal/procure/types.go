package procure

import "context"

// Urgency levels a query can express.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// Price preference levels a query can express.
const (
	PriceBudget      = "budget"
	PriceMidRange    = "mid-range"
	PricePremium     = "premium"
	PriceUnspecified = "unspecified"
)

// Intent is the normalized structured form of a free-text procurement query.
// Created fresh per request; never persisted.
type Intent struct {
	Category        string `json:"product_category"`
	ProductName     string `json:"product_name"`
	Brand           string `json:"brand"`
	Quantity        int    `json:"quantity"`
	Urgency         string `json:"urgency"`
	PricePreference string `json:"price_preference"`
}

// Request is a procurement request as received from the transport layer.
// Explicit fields override whatever the resolver extracts from Query.
type Request struct {
	Query            string  `json:"query"`
	Quantity         int     `json:"quantity,omitempty"`
	SKU              string  `json:"sku,omitempty"`
	Category         string  `json:"category,omitempty"`
	Brand            string  `json:"brand,omitempty"`
	MaxPrice         float64 `json:"max_price,omitempty"`
	DeliveryPriority string  `json:"delivery_priority,omitempty"`
}

// Offer is one supplier's priced response for one matched product at the
// requested quantity. Derived and immutable.
type Offer struct {
	SupplierID        string  `json:"supplier_id"`
	SupplierName      string  `json:"supplier_name"`
	SKU               string  `json:"sku"`
	ProductName       string  `json:"product_name"`
	UnitPrice         float64 `json:"unit_price"`
	QuantityAvailable int     `json:"quantity_available"`
	DeliveryDays      int     `json:"delivery_days"`
	ShippingCost      float64 `json:"shipping_cost"`
	TotalCost         float64 `json:"total_cost"`
	BulkDiscount      float64 `json:"bulk_discount"`
	SupplierRating    float64 `json:"supplier_rating"`
	PaymentTerms      string  `json:"payment_terms"`
}

// Result is the assembled response for one procurement request.
type Result struct {
	RequestID               string   `json:"request_id"`
	Query                   string   `json:"query"`
	Offers                  []Offer  `json:"offers"`
	BestOffer               *Offer   `json:"best_offer"`
	TotalSuppliersContacted int      `json:"total_suppliers_contacted"`
	ProcessingTime          float64  `json:"processing_time"`
	Recommendations         []string `json:"recommendations"`
}

// OfferSummary is the condensed view of an offer handed to the
// recommendation collaborator.
type OfferSummary struct {
	Supplier     string
	TotalCost    float64
	DeliveryDays int
}

// IntentResolver turns a free-text query into a structured Intent. Failures
// are recoverable: the pipeline falls back to keyword resolution.
type IntentResolver interface {
	ResolveIntent(ctx context.Context, query string) (Intent, error)
}

// Recommender produces free-text purchasing advice from the top offers.
// Failures are recoverable: the pipeline falls back to a generic line.
type Recommender interface {
	Recommend(ctx context.Context, query string, intent Intent, top []OfferSummary) ([]string, error)
}
