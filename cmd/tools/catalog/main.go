package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/parts-broker/internal/catalog"
)

func main() {
	category := flag.String("category", "", "filter products by category substring")
	suppliers := flag.Bool("suppliers", false, "list suppliers instead of products")
	flag.Parse()

	snapshot, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	if *suppliers {
		t.AppendHeader(table.Row{"ID", "Name", "Specialization", "Rating", "Delivery", "Shipping", "Free Over"})
		for _, s := range snapshot.Suppliers() {
			t.AppendRow(table.Row{s.ID, s.Name, s.Specialization, s.Rating, s.DeliveryTime, s.ShippingCost, s.FreeShippingThreshold})
		}
	} else {
		t.AppendHeader(table.Row{"SKU", "Name", "Category", "Brand", "Compatibility"})
		for _, p := range snapshot.ProductsByCategory(*category) {
			t.AppendRow(table.Row{p.SKU, p.Name, p.Category, p.Brand, strings.Join(p.Compatibility, ", ")})
		}
	}
	t.Render()
}
