package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		configuration string
		want          []string
	}{
		{
			name:          "Should split on commas and trim whitespace",
			configuration: "77, 123:2, 156:3-8",
			want:          []string{"77", "123:2", "156:3-8"},
		},
		{
			name:          "Should drop empty and whitespace-only tokens",
			configuration: "77,, , 123,",
			want:          []string{"77", "123"},
		},
		{
			name:          "Should return no tokens for empty input",
			configuration: "",
			want:          []string{},
		},
		{
			name:          "Should return no tokens for whitespace-only input",
			configuration: "   ,  , ",
			want:          []string{},
		},
		{
			name:          "Should preserve token order",
			configuration: "3,1,2",
			want:          []string{"3", "1", "2"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, SplitTokens(tt.configuration))
		})
	}
}

func TestParseConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		want    Constraint
		wantErr error
	}{
		{
			name:  "Should parse plain product id as any-quantity constraint",
			token: "77",
			want:  Constraint{ProductID: 77, Mode: MatchAny},
		},
		{
			name:  "Should parse id-colon-quantity as exact-quantity constraint",
			token: "123:2",
			want:  Constraint{ProductID: 123, Mode: MatchExactQuantity, Quantity: 2},
		},
		{
			name:  "Should parse id-colon-range as quantity-range constraint",
			token: "156:3-8",
			want:  Constraint{ProductID: 156, Mode: MatchQuantityRange, MinQuantity: 3, MaxQuantity: 8},
		},
		{
			name:  "Should keep a reversed range as parsed",
			token: "10:8-3",
			want:  Constraint{ProductID: 10, Mode: MatchQuantityRange, MinQuantity: 8, MaxQuantity: 3},
		},
		{
			name:  "Should tolerate inner whitespace around separators",
			token: "77 : 2",
			want:  Constraint{ProductID: 77, Mode: MatchExactQuantity, Quantity: 2},
		},
		{
			name:    "Should fail with product id sentinel on non-numeric plain token",
			token:   "abc",
			wantErr: ErrUnparsableProductID,
		},
		{
			name:    "Should fail with quantity sentinel on non-numeric quantity",
			token:   "77:abc",
			wantErr: ErrUnparsableQuantity,
		},
		{
			name:    "Should fail with quantity sentinel on non-numeric product id in quantity form",
			token:   "abc:2",
			wantErr: ErrUnparsableQuantity,
		},
		{
			name:    "Should fail with quantity sentinel on malformed range bound",
			token:   "77:3-x",
			wantErr: ErrUnparsableQuantity,
		},
		{
			name:    "Should fail with quantity sentinel on missing range minimum",
			token:   "77:-5",
			wantErr: ErrUnparsableQuantity,
		},
		{
			name:    "Should fail with quantity sentinel on empty quantity part",
			token:   "77:",
			wantErr: ErrUnparsableQuantity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseConstraint(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		configuration string
		wantErr       bool
	}{
		{
			name:          "Should accept the full grammar",
			configuration: "77, 123:2, 156:3-8",
		},
		{
			name:          "Should accept an empty configuration",
			configuration: "   ",
		},
		{
			name:          "Should reject an unparsable plain token even though evaluation skips it",
			configuration: "77, abc",
			wantErr:       true,
		},
		{
			name:          "Should reject a malformed quantity token",
			configuration: "77:x",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateConfiguration(tt.configuration)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
