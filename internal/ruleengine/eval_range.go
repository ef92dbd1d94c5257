package ruleengine

// QuantityRangeEvaluator implements the Evaluator interface for
// "ProductId:Min-Max" constraints. The cart line's total quantity must fall
// inside the configured range, inclusive on both ends.
//
// A reversed range (min > max) can never match: the inclusive-between test
// fails for every possible quantity. That is the stored behavior and it is
// kept rather than rejected at evaluation time.
type QuantityRangeEvaluator struct{}

// Eval matches on product id and an inclusive quantity range.
func (e *QuantityRangeEvaluator) Eval(constraint Constraint, line CartLine) bool {
	if line.ProductID != constraint.ProductID {
		return false
	}
	return line.TotalQuantity >= constraint.MinQuantity && line.TotalQuantity <= constraint.MaxQuantity
}
