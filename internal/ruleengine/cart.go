package ruleengine

// AggregateCart reduces raw cart items to per-product cart lines.
//
// Only items belonging to the given store and to the shopping-cart type are
// considered; wishlist and other cart types are excluded. Quantities of items
// sharing a product id are summed (commutative, so item order cannot change
// the outcome). Lines are returned in first-seen product order, which is the
// order the evaluator scans them in.
func AggregateCart(items []CartItem, storeID int64) []CartLine {
	lines := make([]CartLine, 0, len(items))
	index := make(map[int64]int, len(items))

	for _, item := range items {
		if item.CartType != CartTypeShoppingCart {
			continue
		}
		if item.StoreID != storeID {
			continue
		}

		if i, ok := index[item.ProductID]; ok {
			lines[i].TotalQuantity += item.Quantity
			continue
		}

		index[item.ProductID] = len(lines)
		lines = append(lines, CartLine{
			ProductID:     item.ProductID,
			TotalQuantity: item.Quantity,
		})
	}

	return lines
}
