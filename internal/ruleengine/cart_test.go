package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateCart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		items   []CartItem
		storeID int64
		want    []CartLine
	}{
		{
			name: "Should sum quantities across lines of the same product",
			items: []CartItem{
				{ProductID: 10, Quantity: 1, StoreID: 1, CartType: CartTypeShoppingCart},
				{ProductID: 10, Quantity: 2, StoreID: 1, CartType: CartTypeShoppingCart},
			},
			storeID: 1,
			want:    []CartLine{{ProductID: 10, TotalQuantity: 3}},
		},
		{
			name: "Should exclude wishlist items",
			items: []CartItem{
				{ProductID: 10, Quantity: 1, StoreID: 1, CartType: CartTypeShoppingCart},
				{ProductID: 10, Quantity: 5, StoreID: 1, CartType: CartTypeWishlist},
			},
			storeID: 1,
			want:    []CartLine{{ProductID: 10, TotalQuantity: 1}},
		},
		{
			name: "Should exclude items from other stores",
			items: []CartItem{
				{ProductID: 10, Quantity: 1, StoreID: 1, CartType: CartTypeShoppingCart},
				{ProductID: 10, Quantity: 4, StoreID: 2, CartType: CartTypeShoppingCart},
			},
			storeID: 1,
			want:    []CartLine{{ProductID: 10, TotalQuantity: 1}},
		},
		{
			name: "Should keep first-seen product order",
			items: []CartItem{
				{ProductID: 30, Quantity: 1, StoreID: 1, CartType: CartTypeShoppingCart},
				{ProductID: 10, Quantity: 1, StoreID: 1, CartType: CartTypeShoppingCart},
				{ProductID: 30, Quantity: 1, StoreID: 1, CartType: CartTypeShoppingCart},
			},
			storeID: 1,
			want: []CartLine{
				{ProductID: 30, TotalQuantity: 2},
				{ProductID: 10, TotalQuantity: 1},
			},
		},
		{
			name:    "Should return no lines for an empty cart",
			items:   nil,
			storeID: 1,
			want:    []CartLine{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, AggregateCart(tt.items, tt.storeID))
		})
	}
}
