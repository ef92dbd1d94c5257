package ruleengine

import (
	"errors"
	"log/slog"
)

// Engine is the orchestrator for restricted-product rule evaluation.
type Engine struct {
	strategies map[MatchMode]Evaluator
	logger     *slog.Logger
}

// New creates a new Engine.
// It requires a logger instance to ensure observability without relying on
// global state. If logger is nil, it defaults to slog.Default().
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		logger: logger,
		strategies: map[MatchMode]Evaluator{
			MatchAny:           &AnyQuantityEvaluator{},
			MatchExactQuantity: &ExactQuantityEvaluator{},
			MatchQuantityRange: &QuantityRangeEvaluator{},
		},
	}
}

// Evaluate checks the aggregated cart lines against a configuration string.
//
// Tokens are processed in list order and parsing is interleaved with
// matching: the first constraint satisfied by any cart line short-circuits
// the whole evaluation, so a malformed token after a match is never seen.
//
// Parse failures are asymmetric, preserving the stored-configuration
// contract:
//   - a plain product-id token that does not parse is skipped silently;
//   - a malformed quantity or range token aborts the entire evaluation,
//     discarding all later tokens (fail closed).
//
// An empty token list yields an invalid result; the vacuous "no restriction
// configured" case is decided by the caller before the engine is involved.
func (e *Engine) Evaluate(configuration string, lines []CartLine) Result {
	for _, token := range SplitTokens(configuration) {
		constraint, err := ParseConstraint(token)
		if err != nil {
			if errors.Is(err, ErrUnparsableQuantity) {
				e.logger.Warn("malformed quantity token aborts evaluation",
					"token", token,
				)
				return Result{Valid: false, Reason: ReasonParseAbort}
			}

			// Tolerant path: plain tokens that fail integer parsing are
			// treated as non-matches, not errors.
			e.logger.Debug("skipping unparsable product id token",
				"token", token,
			)
			continue
		}

		strategy, exists := e.strategies[constraint.Mode]
		if !exists {
			e.logger.Warn("skipping unknown match mode",
				"mode", constraint.Mode.String(),
				"token", token,
			)
			continue
		}

		for _, line := range lines {
			if strategy.Eval(constraint, line) {
				return Result{Valid: true, Reason: ReasonRuleMatch}
			}
		}
	}

	return Result{Valid: false, Reason: ReasonNoMatch}
}
