package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/parts-broker/internal/catalog"
	"github.com/david/parts-broker/internal/procure"
)

// quote runs a procurement query offline: keyword parsing, static
// recommendation, no network.
func main() {
	query := flag.String("query", "", "procurement query, e.g. \"brake pads for Toyota\"")
	quantity := flag.Int("quantity", 1, "requested quantity")
	seed := flag.Int64("seed", 0, "seed for the availability draw (0 = random)")
	flag.Parse()

	if *query == "" {
		flag.Usage()
		os.Exit(2)
	}

	snapshot, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	pricing, err := procure.LoadPricingConfig()
	if err != nil {
		log.Fatalf("Failed to load pricing config: %v", err)
	}

	var src rand.Source
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}
	synth := procure.NewSynthesizer(pricing, src)
	pipeline := procure.NewPipeline(snapshot, synth, nil, nil)

	result, err := pipeline.Process(context.Background(), procure.Request{
		Query:    *query,
		Quantity: *quantity,
	})
	if err != nil {
		log.Fatalf("Procurement failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Supplier", "SKU", "Product", "Unit Price", "Discount", "Shipping", "Total", "Days"})
	for _, o := range result.Offers {
		t.AppendRow(table.Row{
			o.SupplierName, o.SKU, o.ProductName,
			fmt.Sprintf("$%.2f", o.UnitPrice),
			fmt.Sprintf("%.0f%%", o.BulkDiscount*100),
			fmt.Sprintf("$%.2f", o.ShippingCost),
			fmt.Sprintf("$%.2f", o.TotalCost),
			o.DeliveryDays,
		})
	}
	t.Render()

	if result.BestOffer != nil {
		fmt.Printf("\nBest offer: %s at $%.2f total (%d days)\n",
			result.BestOffer.SupplierName, result.BestOffer.TotalCost, result.BestOffer.DeliveryDays)
	}
	for _, rec := range result.Recommendations {
		fmt.Println(rec)
	}
	fmt.Printf("Processed in %.3fs (%s)\n", result.ProcessingTime, result.RequestID)
}
