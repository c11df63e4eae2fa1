package orders

import (
	"fmt"
	"math"
)

// ItemInput is one requested line: a product and how many units of it.
type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// normalizeItems validates a requested item list and merges duplicate
// product ids by summing their quantities. The first occurrence of a product
// fixes its position in the result.
func normalizeItems(items []ItemInput) ([]ItemInput, error) {
	if len(items) == 0 {
		return nil, invalidItems(map[string]string{"items": "must contain at least one item"})
	}

	problems := map[string]string{}
	for i, item := range items {
		if item.ProductID <= 0 {
			problems[fmt.Sprintf("items[%d].product_id", i)] = "must be greater than 0"
		}
		if item.Quantity <= 0 {
			problems[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than 0"
		}
	}
	if len(problems) > 0 {
		return nil, invalidItems(problems)
	}

	merged := make([]ItemInput, 0, len(items))
	position := make(map[int64]int, len(items))
	for i, item := range items {
		if idx, ok := position[item.ProductID]; ok {
			if merged[idx].Quantity > math.MaxInt64-item.Quantity {
				return nil, invalidItems(map[string]string{
					fmt.Sprintf("items[%d].quantity", i): "combined quantity for the product is too large",
				})
			}
			merged[idx].Quantity += item.Quantity
			continue
		}
		position[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// lineTotal prices quantity units at unitCents, rejecting totals that do not
// fit in int64.
func lineTotal(productID, unitCents, quantity int64) (int64, error) {
	if unitCents > 0 && quantity > math.MaxInt64/unitCents {
		return 0, invalidItems(map[string]string{
			fmt.Sprintf("product[%d].quantity", productID): "line total exceeds the supported range",
		})
	}
	return unitCents * quantity, nil
}

func productIDs(items []ItemInput) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
