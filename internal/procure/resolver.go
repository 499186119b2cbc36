package procure

import (
	"context"
	"log"
	"strings"
	"time"
)

// defaultResolveTimeout bounds the external resolver call. A call that never
// returns must not stall a request; past the deadline the keyword fallback
// is taken unconditionally.
const defaultResolveTimeout = 10 * time.Second

// categoryKeywords drives the deterministic fallback parser. First matching
// row wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"brakes", []string{"brake", "pad", "rotor", "caliper"}},
	{"filters", []string{"filter", "air", "oil", "fuel"}},
	{"engine", []string{"engine", "piston", "valve", "cam"}},
	{"ignition", []string{"ignition", "spark", "coil", "plug"}},
	{"suspension", []string{"suspension", "shock", "strut", "spring"}},
	{"electrical", []string{"electrical", "battery", "alternator", "starter"}},
}

// FallbackIntent derives an Intent from the raw query with keyword rules
// alone. Used whenever the resolver collaborator fails or times out.
func FallbackIntent(query string) Intent {
	lower := strings.ToLower(query)

	category := CategoryGeneral
	for _, row := range categoryKeywords {
		for _, w := range row.words {
			if strings.Contains(lower, w) {
				category = row.category
				break
			}
		}
		if category != CategoryGeneral {
			break
		}
	}

	return Intent{
		Category:        category,
		ProductName:     query,
		Quantity:        1,
		Urgency:         UrgencyMedium,
		PricePreference: PriceMidRange,
	}
}

// resolveIntent runs the collaborator off the request path with a bounded
// timeout. Resolver errors never propagate; the result is always a usable
// Intent.
func resolveIntent(ctx context.Context, resolver IntentResolver, timeout time.Duration, query string) Intent {
	if resolver == nil {
		return FallbackIntent(query)
	}
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		intent Intent
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		it, err := resolver.ResolveIntent(rctx, query)
		ch <- outcome{it, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			log.Printf("intent resolver failed, using keyword fallback: %v", out.err)
			return FallbackIntent(query)
		}
		return normalizeIntent(out.intent, query)
	case <-rctx.Done():
		log.Printf("intent resolver timed out after %s, using keyword fallback", timeout)
		return FallbackIntent(query)
	}
}

// normalizeIntent fills gaps a collaborator response may leave so downstream
// stages never see empty enums or a non-positive quantity.
func normalizeIntent(intent Intent, query string) Intent {
	if strings.TrimSpace(intent.Category) == "" {
		intent.Category = CategoryGeneral
	}
	if strings.TrimSpace(intent.ProductName) == "" {
		intent.ProductName = query
	}
	if intent.Quantity < 1 {
		intent.Quantity = 1
	}
	switch intent.Urgency {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
	default:
		intent.Urgency = UrgencyMedium
	}
	switch intent.PricePreference {
	case PriceBudget, PriceMidRange, PricePremium:
	default:
		intent.PricePreference = PriceUnspecified
	}
	return intent
}
