package procure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/david/parts-broker/internal/catalog"
	"github.com/google/uuid"
)

// ErrInvalidRequest indicates a request rejected at the pipeline boundary
// before any synthesis work runs.
var ErrInvalidRequest = errors.New("invalid procurement request")

// maxConcurrentProducts bounds the product-parallel synthesis fan-out.
const maxConcurrentProducts = 4

// Pipeline sequences intent resolution, product matching, offer synthesis
// and ranking over one immutable catalog snapshot. Safe for concurrent use.
type Pipeline struct {
	snapshot    *catalog.Snapshot
	synth       *Synthesizer
	resolver    IntentResolver
	recommender Recommender

	// ResolveTimeout bounds the external resolver call; zero means the
	// package default.
	ResolveTimeout time.Duration
}

// NewPipeline wires the procurement stages together. resolver and
// recommender may be nil; the deterministic fallbacks are used instead.
func NewPipeline(snapshot *catalog.Snapshot, synth *Synthesizer, resolver IntentResolver, recommender Recommender) *Pipeline {
	return &Pipeline{
		snapshot:    snapshot,
		synth:       synth,
		resolver:    resolver,
		recommender: recommender,
	}
}

// Process runs one procurement request end to end. The returned Result is
// always well formed; only boundary validation can fail.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidRequest)
	}
	if req.MaxPrice < 0 {
		return nil, fmt.Errorf("%w: max_price must not be negative", ErrInvalidRequest)
	}

	intent := resolveIntent(ctx, p.resolver, p.ResolveTimeout, req.Query)
	intent = applyOverrides(intent, req)

	quantity := intent.Quantity
	if req.Quantity > 0 {
		quantity = req.Quantity
	}

	products := p.matchProducts(intent, req.SKU)
	if len(products) == 0 {
		return &Result{
			RequestID:       newRequestID(),
			Query:           req.Query,
			Offers:          []Offer{},
			ProcessingTime:  time.Since(start).Seconds(),
			Recommendations: []string{recNoProductMatch},
		}, nil
	}

	offers := p.synthesizeAll(products, quantity)
	offers = filterOffers(offers, req)

	ranking := RankOffers(offers)
	recommendations := recommend(ctx, p.recommender, req.Query, intent, ranking.Top)

	return &Result{
		RequestID:               newRequestID(),
		Query:                   req.Query,
		Offers:                  ranking.Top,
		BestOffer:               ranking.Best,
		TotalSuppliersContacted: len(p.snapshot.Suppliers()),
		ProcessingTime:          time.Since(start).Seconds(),
		Recommendations:         recommendations,
	}, nil
}

// applyOverrides lets explicit request fields win over resolver output.
func applyOverrides(intent Intent, req Request) Intent {
	if c := strings.TrimSpace(req.Category); c != "" {
		intent.Category = c
	}
	if b := strings.TrimSpace(req.Brand); b != "" {
		intent.Brand = b
	}
	return intent
}

// matchProducts pins matching to a single product when the request names a
// SKU that exists, otherwise runs the matcher over the full catalog.
func (p *Pipeline) matchProducts(intent Intent, sku string) []catalog.Product {
	if sku = strings.TrimSpace(sku); sku != "" {
		if product, ok := p.snapshot.LookupSKU(sku); ok {
			return []catalog.Product{product}
		}
		return nil
	}
	return MatchProducts(intent, p.snapshot.Products())
}

// synthesizeAll quotes every supplier for every matched product. Products
// are processed in parallel under a semaphore; results are gathered per
// product index so the flattened order stays deterministic
// (product order x supplier order) for stable ranking ties.
func (p *Pipeline) synthesizeAll(products []catalog.Product, quantity int) []Offer {
	suppliers := p.snapshot.Suppliers()
	perProduct := make([][]Offer, len(products))

	sem := make(chan struct{}, maxConcurrentProducts)
	var wg sync.WaitGroup

	for i, product := range products {
		wg.Add(1)
		go func(idx int, prod catalog.Product) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var offers []Offer
			for _, supplier := range suppliers {
				if offer, ok := p.synth.Quote(prod, supplier, quantity); ok {
					offers = append(offers, offer)
				}
			}
			perProduct[idx] = offers
		}(i, product)
	}
	wg.Wait()

	var all []Offer
	for _, offers := range perProduct {
		all = append(all, offers...)
	}
	return all
}

// filterOffers applies the optional request-level constraints.
func filterOffers(offers []Offer, req Request) []Offer {
	if req.MaxPrice <= 0 && req.DeliveryPriority != "express" {
		return offers
	}
	var kept []Offer
	for _, o := range offers {
		if req.MaxPrice > 0 && o.UnitPrice > req.MaxPrice {
			continue
		}
		if req.DeliveryPriority == "express" && o.DeliveryDays > 3 {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

func newRequestID() string {
	return "REQ_" + uuid.New().String()
}
