package procure

import (
	"context"
	"log"
	"sort"
)

// maxRankedOffers caps the offers returned to the caller.
const maxRankedOffers = 10

// maxSummarized caps the offers described to the recommendation collaborator.
const maxSummarized = 5

// Fallback recommendation lines. The collaborator is an unreliable external
// dependency, so these paths are mandatory.
const (
	recNoOffers       = "No offers available for your request"
	recGenericAdvice  = "Consider the best balance of price, delivery time, and supplier rating"
	recNoProductMatch = "No products found matching your criteria"
)

// Ranking is the ordered view over a synthesized offer set.
type Ranking struct {
	// Top holds up to maxRankedOffers offers sorted ascending by total
	// cost. Ties keep synthesis order.
	Top []Offer
	// Best is the cheapest offer, nil when the set is empty.
	Best *Offer
}

// RankOffers stable-sorts offers ascending by total cost, selects the best
// and truncates to the return cap.
func RankOffers(offers []Offer) Ranking {
	sorted := make([]Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalCost < sorted[j].TotalCost
	})

	var r Ranking
	if len(sorted) > 0 {
		best := sorted[0]
		r.Best = &best
	}
	if len(sorted) > maxRankedOffers {
		sorted = sorted[:maxRankedOffers]
	}
	r.Top = sorted
	return r
}

// Summarize condenses the top offers for the recommendation collaborator.
func Summarize(offers []Offer) []OfferSummary {
	n := len(offers)
	if n > maxSummarized {
		n = maxSummarized
	}
	summaries := make([]OfferSummary, 0, n)
	for _, o := range offers[:n] {
		summaries = append(summaries, OfferSummary{
			Supplier:     o.SupplierName,
			TotalCost:    o.TotalCost,
			DeliveryDays: o.DeliveryDays,
		})
	}
	return summaries
}

// recommend invokes the collaborator over the top offers, falling back to the
// generic advice line on any failure.
func recommend(ctx context.Context, rec Recommender, query string, intent Intent, offers []Offer) []string {
	if len(offers) == 0 {
		return []string{recNoOffers}
	}
	if rec == nil {
		return []string{recGenericAdvice}
	}

	lines, err := rec.Recommend(ctx, query, intent, Summarize(offers))
	if err != nil || len(lines) == 0 {
		if err != nil {
			log.Printf("recommendation collaborator failed: %v", err)
		}
		return []string{recGenericAdvice}
	}
	return lines
}
