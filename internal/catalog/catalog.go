package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

//go:embed data/products.json data/suppliers.json
var dataFS embed.FS

var (
	// ErrSourceMissing indicates a required catalog data file is absent.
	ErrSourceMissing = errors.New("catalog source missing")
	// ErrSourceMalformed indicates a catalog data file could not be parsed
	// or contains invalid records.
	ErrSourceMalformed = errors.New("catalog source malformed")
)

// Product is a single catalog entry. Immutable after load.
type Product struct {
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand"`
	Compatibility  []string          `json:"compatibility"`
	Specifications map[string]string `json:"specifications"`
	Dimensions     string            `json:"dimensions"`
	Weight         string            `json:"weight"`
	Warranty       string            `json:"warranty"`
	Certifications []string          `json:"certifications"`
	Description    string            `json:"description"`
}

// Supplier is a simulated seller. Immutable after load.
type Supplier struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	Specialization        string             `json:"specialization"`
	Location              string             `json:"location"`
	Rating                float64            `json:"rating"`
	DeliveryTime          string             `json:"delivery_time"`
	MinimumOrder          int                `json:"minimum_order"`
	BulkDiscount          map[string]float64 `json:"bulk_discount"`
	PaymentTerms          string             `json:"payment_terms"`
	ShippingCost          float64            `json:"shipping_cost"`
	FreeShippingThreshold float64            `json:"free_shipping_threshold"`
}

type productFile struct {
	Products []Product `json:"products"`
}

type supplierFile struct {
	Suppliers []Supplier `json:"suppliers"`
}

// Snapshot is the read-only catalog loaded once at startup. Safe for
// concurrent reads; there is no mutation API.
type Snapshot struct {
	products  []Product
	suppliers []Supplier
	bySKU     map[string]Product
}

// Load parses the embedded product and supplier datasets into a Snapshot.
func Load() (*Snapshot, error) {
	productsRaw, err := dataFS.ReadFile("data/products.json")
	if err != nil {
		return nil, fmt.Errorf("%w: data/products.json: %v", ErrSourceMissing, err)
	}
	suppliersRaw, err := dataFS.ReadFile("data/suppliers.json")
	if err != nil {
		return nil, fmt.Errorf("%w: data/suppliers.json: %v", ErrSourceMissing, err)
	}
	return Parse(productsRaw, suppliersRaw)
}

// Parse builds a Snapshot from raw JSON sources. Split out from Load so tests
// can feed malformed input without touching the embedded files.
func Parse(productsRaw, suppliersRaw []byte) (*Snapshot, error) {
	var pf productFile
	if err := json.Unmarshal(productsRaw, &pf); err != nil {
		return nil, fmt.Errorf("%w: products: %v", ErrSourceMalformed, err)
	}
	var sf supplierFile
	if err := json.Unmarshal(suppliersRaw, &sf); err != nil {
		return nil, fmt.Errorf("%w: suppliers: %v", ErrSourceMalformed, err)
	}

	snap := &Snapshot{
		bySKU: make(map[string]Product, len(pf.Products)),
	}

	for i, p := range pf.Products {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("%w: products[%d]: %v", ErrSourceMalformed, i, err)
		}
		if _, dup := snap.bySKU[p.SKU]; dup {
			return nil, fmt.Errorf("%w: products[%d]: duplicate sku %q", ErrSourceMalformed, i, p.SKU)
		}
		snap.products = append(snap.products, p)
		snap.bySKU[p.SKU] = p
	}

	seen := make(map[string]bool, len(sf.Suppliers))
	for i, s := range sf.Suppliers {
		if err := validateSupplier(s); err != nil {
			return nil, fmt.Errorf("%w: suppliers[%d]: %v", ErrSourceMalformed, i, err)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: suppliers[%d]: duplicate id %q", ErrSourceMalformed, i, s.ID)
		}
		seen[s.ID] = true
		snap.suppliers = append(snap.suppliers, s)
	}

	return snap, nil
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return errors.New("missing sku")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("missing name")
	}
	if strings.TrimSpace(p.Category) == "" {
		return errors.New("missing category")
	}
	return nil
}

func validateSupplier(s Supplier) error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("missing id")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("missing name")
	}
	if s.Rating < 0 || s.Rating > 5 {
		return fmt.Errorf("rating %.2f out of range [0,5]", s.Rating)
	}
	if s.ShippingCost < 0 {
		return errors.New("negative shipping_cost")
	}
	for tier, discount := range s.BulkDiscount {
		if discount < 0 || discount >= 1 {
			return fmt.Errorf("bulk_discount[%s]=%.2f out of range [0,1)", tier, discount)
		}
	}
	return nil
}

// Products returns all products in load order.
func (s *Snapshot) Products() []Product {
	return s.products
}

// Suppliers returns all suppliers in load order.
func (s *Snapshot) Suppliers() []Supplier {
	return s.suppliers
}

// LookupSKU returns the product with the given SKU, if present.
func (s *Snapshot) LookupSKU(sku string) (Product, bool) {
	p, ok := s.bySKU[sku]
	return p, ok
}

// ProductsByCategory returns products whose category contains the given
// string, case-insensitively. An empty category matches everything.
func (s *Snapshot) ProductsByCategory(category string) []Product {
	if category == "" {
		return s.products
	}
	needle := strings.ToLower(category)
	var out []Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}
