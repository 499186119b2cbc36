package procure

import (
	"strings"

	"github.com/david/parts-broker/internal/catalog"
)

// maxMatches caps the products carried into offer synthesis. Matches are
// kept in catalog load order, not re-ranked.
const maxMatches = 5

// CategoryGeneral is the sentinel meaning "no category constraint".
const CategoryGeneral = "general"

// MatchProducts selects up to maxMatches products for an intent. The exact
// pass filters on category, name hint and brand hint; if it comes up empty
// and a name hint exists, a looser fallback pass matches the whole hint
// against name or category, or any hint token against the name.
func MatchProducts(intent Intent, products []catalog.Product) []catalog.Product {
	var matches []catalog.Product

	category := strings.ToLower(strings.TrimSpace(intent.Category))
	nameHint := strings.ToLower(strings.TrimSpace(intent.ProductName))
	brandHint := strings.ToLower(strings.TrimSpace(intent.Brand))

	for _, p := range products {
		if category != "" && category != CategoryGeneral {
			if !strings.Contains(strings.ToLower(p.Category), category) {
				continue
			}
		}
		if nameHint != "" && !strings.Contains(strings.ToLower(p.Name), nameHint) {
			continue
		}
		if brandHint != "" && !strings.Contains(strings.ToLower(p.Brand), brandHint) {
			continue
		}
		matches = append(matches, p)
		if len(matches) == maxMatches {
			return matches
		}
	}

	if len(matches) == 0 && nameHint != "" {
		matches = fuzzyMatch(nameHint, products)
	}

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

func fuzzyMatch(hint string, products []catalog.Product) []catalog.Product {
	tokens := strings.Fields(hint)
	var matches []catalog.Product

	for _, p := range products {
		name := strings.ToLower(p.Name)
		category := strings.ToLower(p.Category)

		ok := strings.Contains(name, hint) || strings.Contains(category, hint)
		if !ok {
			for _, tok := range tokens {
				if strings.Contains(name, tok) {
					ok = true
					break
				}
			}
		}
		if ok {
			matches = append(matches, p)
			if len(matches) == maxMatches {
				break
			}
		}
	}
	return matches
}
