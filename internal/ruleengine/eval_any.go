package ruleengine

// AnyQuantityEvaluator implements the Evaluator interface for plain
// product-id constraints. Presence of the product in the cart is enough;
// the accumulated quantity is ignored.
type AnyQuantityEvaluator struct{}

// Eval matches when the cart line carries the constraint's product.
func (e *AnyQuantityEvaluator) Eval(constraint Constraint, line CartLine) bool {
	return line.ProductID == constraint.ProductID
}
