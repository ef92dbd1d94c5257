package ruleengine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse failure sentinels. The engine treats them very differently:
// a plain product-id token that fails to parse is skipped, while a malformed
// quantity or range token aborts the whole evaluation.
var (
	// ErrUnparsableProductID reports a plain token that is not an integer.
	ErrUnparsableProductID = errors.New("unparsable product id token")

	// ErrUnparsableQuantity reports a quantity or range token with a
	// non-integer part.
	ErrUnparsableQuantity = errors.New("unparsable quantity token")
)

// SplitTokens splits a configuration string on commas, trims each token and
// drops empty ones, preserving order.
func SplitTokens(configuration string) []string {
	parts := strings.Split(configuration, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// ParseConstraint parses one trimmed configuration token into a Constraint.
//
// Token grammar:
//
//	ProductId                       -> MatchAny
//	ProductId:Quantity              -> MatchExactQuantity
//	ProductId:MinQuantity-MaxQuantity -> MatchQuantityRange
//
// Errors wrap ErrUnparsableProductID for the plain form and
// ErrUnparsableQuantity for the two quantity forms.
func ParseConstraint(token string) (Constraint, error) {
	idPart, quantityPart, hasColon := strings.Cut(token, ":")

	if !hasColon {
		id, err := parseID(idPart)
		if err != nil {
			return Constraint{}, fmt.Errorf("%w: %q", ErrUnparsableProductID, token)
		}
		return Constraint{ProductID: id, Mode: MatchAny}, nil
	}

	minPart, maxPart, hasHyphen := strings.Cut(quantityPart, "-")

	if !hasHyphen {
		id, err := parseID(idPart)
		if err != nil {
			return Constraint{}, fmt.Errorf("%w: %q", ErrUnparsableQuantity, token)
		}
		qty, err := parseQuantity(quantityPart)
		if err != nil {
			return Constraint{}, fmt.Errorf("%w: %q", ErrUnparsableQuantity, token)
		}
		return Constraint{ProductID: id, Mode: MatchExactQuantity, Quantity: qty}, nil
	}

	id, err := parseID(idPart)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: %q", ErrUnparsableQuantity, token)
	}
	minQty, err := parseQuantity(minPart)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: %q", ErrUnparsableQuantity, token)
	}
	maxQty, err := parseQuantity(maxPart)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: %q", ErrUnparsableQuantity, token)
	}

	return Constraint{
		ProductID:   id,
		Mode:        MatchQuantityRange,
		MinQuantity: minQty,
		MaxQuantity: maxQty,
	}, nil
}

// ValidateConfiguration strictly parses every token of a configuration string.
// It is used on the admin write path so stored strings are always well-formed,
// even though the evaluator tolerates unparsable plain tokens at read time.
// An empty or whitespace-only configuration is valid (no restriction defined).
func ValidateConfiguration(configuration string) error {
	for _, token := range SplitTokens(configuration) {
		if _, err := ParseConstraint(token); err != nil {
			return err
		}
	}
	return nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseQuantity(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
