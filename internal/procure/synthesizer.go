package procure

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/david/parts-broker/internal/catalog"
)

// Synthesizer computes simulated supplier offers from the static pricing
// model plus a bounded random availability draw. The random source is
// injectable so tests can fix the seed; a mutex guards it because offer
// synthesis runs product-parallel.
type Synthesizer struct {
	cfg *PricingConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer builds a Synthesizer over the pricing model. src may be nil,
// in which case a time-seeded source is used.
func NewSynthesizer(cfg *PricingConfig, src rand.Source) *Synthesizer {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &Synthesizer{cfg: cfg, rng: rand.New(src)}
}

// Quote produces an offer for one (product, supplier) pair at the requested
// quantity. Returns false when the drawn availability cannot cover the
// request; no other step can fail once inputs are valid.
func (s *Synthesizer) Quote(product catalog.Product, supplier catalog.Supplier, quantity int) (Offer, bool) {
	available := s.drawAvailability(product.Category)
	if available < quantity {
		return Offer{}, false
	}

	basePrice := s.cfg.BasePrice(product.Category) * s.cfg.Multiplier(supplier.ID)
	discount := ApplicableDiscount(quantity, supplier.BulkDiscount)
	unitPrice := basePrice * (1 - discount)

	subtotal := unitPrice * float64(quantity)
	shipping := supplier.ShippingCost
	if subtotal >= supplier.FreeShippingThreshold {
		shipping = 0
	}

	return Offer{
		SupplierID:        supplier.ID,
		SupplierName:      supplier.Name,
		SKU:               product.SKU,
		ProductName:       product.Name,
		UnitPrice:         unitPrice,
		QuantityAvailable: available,
		DeliveryDays:      s.cfg.DeliveryDays(supplier.DeliveryTime),
		ShippingCost:      shipping,
		TotalCost:         subtotal + shipping,
		BulkDiscount:      discount,
		SupplierRating:    supplier.Rating,
		PaymentTerms:      supplier.PaymentTerms,
	}, true
}

// drawAvailability simulates inventory: a uniform draw over
// [0.3*base, 1.2*base] inclusive for the product's category.
func (s *Synthesizer) drawAvailability(category string) int {
	base := s.cfg.BaseQuantity(category)
	lo := base * 3 / 10
	hi := base * 12 / 10

	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

// ApplicableDiscount resolves the bulk discount for a quantity: the maximum
// discount among all tiers whose minimum-quantity threshold is satisfied.
// Tier keys look like "50+"; unparsable keys are skipped.
func ApplicableDiscount(quantity int, tiers map[string]float64) float64 {
	discount := 0.0
	for tier, tierDiscount := range tiers {
		minQty, err := strconv.Atoi(strings.TrimSuffix(tier, "+"))
		if err != nil {
			continue
		}
		if quantity >= minQty && tierDiscount > discount {
			discount = tierDiscount
		}
	}
	return discount
}
