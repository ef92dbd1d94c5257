package ruleengine

// Evaluator is the interface that all match-mode strategies must implement.
// It encapsulates the specific logic to determine if a cart line satisfies
// a constraint.
type Evaluator interface {
	// Eval reports whether the cart line satisfies the constraint.
	// Implementations must be stateless and safe for concurrent use.
	Eval(constraint Constraint, line CartLine) bool
}
