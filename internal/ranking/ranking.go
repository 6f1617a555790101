// Package ranking reduces raw upstream orders into a top-sellers report.
package ranking

import (
	"sort"

	"github.com/orderpulse/ordersbff/internal/domain"
)

// DefaultLimit is the number of products in a top-sellers report.
const DefaultLimit = 5

type productKey struct {
	description       string
	gtin              string
	merchantProductNo string
}

// TopSold groups every order line by (description, gtin, merchantProductNo),
// sums quantities per group and returns the DefaultLimit groups with the
// highest totals.
func TopSold(orders []domain.Order) []domain.ProductAggregate {
	return TopN(orders, DefaultLimit)
}

// TopN is TopSold with an explicit limit. Equal totals keep the order in which
// their product was first encountered. Quantities are summed as received,
// zero and negative included. A negative limit returns every group.
func TopN(orders []domain.Order, limit int) []domain.ProductAggregate {
	index := make(map[productKey]int)
	groups := make([]domain.ProductAggregate, 0)

	for _, order := range orders {
		for _, line := range order.Lines {
			key := productKey{
				description:       line.Description,
				gtin:              line.Gtin,
				merchantProductNo: line.MerchantProductNo,
			}
			i, ok := index[key]
			if !ok {
				i = len(groups)
				index[key] = i
				groups = append(groups, domain.ProductAggregate{
					ProductName:       line.Description,
					Gtin:              line.Gtin,
					MerchantProductNo: line.MerchantProductNo,
				})
			}
			groups[i].TotalQuantity += line.Quantity
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalQuantity > groups[j].TotalQuantity
	})

	if limit >= 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}
