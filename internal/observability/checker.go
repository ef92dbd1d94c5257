package observability

import "context"

// Checker is a dependency probe consumed by the readiness endpoint. Each
// infrastructure component (Postgres pool, Redis client) contributes one.
type Checker interface {
	// Name identifies the component in probe responses and logs.
	Name() string
	// Check reports nil when the dependency is reachable. Implementations
	// must honor the context deadline.
	Check(ctx context.Context) error
}
