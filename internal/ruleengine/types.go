// Package ruleengine provides the core logic for discount requirement evaluation.
// It parses the restricted-product configuration mini-language and implements a
// Strategy pattern where each match mode is evaluated against aggregated cart
// lines to determine a boolean result.
package ruleengine

// MatchMode discriminates how a constraint compares against a cart line.
type MatchMode int

const (
	// MatchAny matches on product id alone, ignoring quantity.
	// Token form: "77".
	MatchAny MatchMode = iota + 1

	// MatchExactQuantity matches on product id with an exact total quantity.
	// Token form: "77:2".
	MatchExactQuantity

	// MatchQuantityRange matches on product id with an inclusive quantity range.
	// Token form: "77:3-8".
	MatchQuantityRange
)

// String returns the mode name used in logs.
func (m MatchMode) String() string {
	switch m {
	case MatchAny:
		return "ANY"
	case MatchExactQuantity:
		return "EXACT_QUANTITY"
	case MatchQuantityRange:
		return "QUANTITY_RANGE"
	default:
		return "UNKNOWN"
	}
}

// Constraint is one restricted-product rule parsed from a configuration token.
// It is immutable once parsed; only the fields relevant to Mode are populated.
type Constraint struct {
	// ProductID identifies the restricted product.
	ProductID int64

	// Mode selects the evaluation strategy.
	Mode MatchMode

	// Quantity is the exact total required when Mode is MatchExactQuantity.
	Quantity int

	// MinQuantity and MaxQuantity bound the inclusive range when Mode is
	// MatchQuantityRange. A reversed range (min > max) is kept as-is and
	// simply never matches.
	MinQuantity int
	MaxQuantity int
}

// CartType distinguishes the customer's shopping cart from other item lists.
// Values mirror the platform's cart type identifiers.
type CartType int

const (
	// CartTypeShoppingCart holds items the customer intends to buy.
	CartTypeShoppingCart CartType = 1

	// CartTypeWishlist holds saved items; never considered by discount rules.
	CartTypeWishlist CartType = 2
)

// CartItem is a single raw cart entry as submitted by the checkout flow.
type CartItem struct {
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	StoreID   int64    `json:"store_id"`
	CartType  CartType `json:"cart_type"`
}

// CartLine is the aggregated view of all cart entries for one product id
// within one store and cart type. Derived fresh per evaluation; not persisted.
type CartLine struct {
	ProductID     int64
	TotalQuantity int
}

// Result is the outcome of evaluating a configuration string against a cart.
type Result struct {
	// Valid reports whether any constraint matched. Defaults to false (fail closed).
	Valid bool

	// Reason explains the outcome for API responses and logs.
	Reason string
}

// Evaluation outcome reasons.
const (
	// ReasonRuleMatch means at least one constraint matched a cart line.
	ReasonRuleMatch = "RULE_MATCH"

	// ReasonNoMatch means every token was evaluated and none matched.
	ReasonNoMatch = "NO_MATCH"

	// ReasonParseAbort means a quantity or range token was malformed, which
	// aborts the whole evaluation regardless of any later token.
	ReasonParseAbort = "PARSE_ABORT"
)
