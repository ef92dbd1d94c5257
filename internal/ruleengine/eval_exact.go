package ruleengine

// ExactQuantityEvaluator implements the Evaluator interface for
// "ProductId:Quantity" constraints. The cart line's total quantity
// (summed across all entries of that product) must equal the configured
// quantity exactly.
type ExactQuantityEvaluator struct{}

// Eval matches on product id and an exact total quantity.
func (e *ExactQuantityEvaluator) Eval(constraint Constraint, line CartLine) bool {
	if line.ProductID != constraint.ProductID {
		return false
	}
	return line.TotalQuantity == constraint.Quantity
}
