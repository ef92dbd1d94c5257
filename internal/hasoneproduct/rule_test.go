package hasoneproduct

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpontes/promogate/internal/ruleengine"
)

// --- Hand-written fakes for the collaborator ports ---

type fakeSettings struct {
	values map[string]string
	err    error
}

func (f *fakeSettings) GetByKey(_ context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

type fakeRequirements struct {
	all     []DiscountRequirement
	deleted []int64
	err     error
}

func (f *fakeRequirements) GetAllRequirements(_ context.Context) ([]DiscountRequirement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.all, nil
}

func (f *fakeRequirements) Delete(_ context.Context, r DiscountRequirement) error {
	f.deleted = append(f.deleted, r.ID)
	return nil
}

type fakeLocalization struct {
	resources map[string]string
	deleted   []string
}

func (f *fakeLocalization) AddOrUpdate(_ context.Context, key, value string) error {
	if f.resources == nil {
		f.resources = make(map[string]string)
	}
	f.resources[key] = value
	return nil
}

func (f *fakeLocalization) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeRouting builds "/Admin/{controller}/{action}?{values}" with sorted keys.
type fakeRouting struct{}

func (fakeRouting) BuildActionURL(action, controller string, routeValues map[string]string) string {
	values := url.Values{}
	for k, v := range routeValues {
		values.Set(k, v)
	}
	return fmt.Sprintf("/Admin/%s/%s?%s", controller, action, values.Encode())
}

func newTestRule(settings SettingsStore) (*Rule, *fakeRequirements, *fakeLocalization) {
	reqs := &fakeRequirements{}
	loc := &fakeLocalization{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, settings, reqs, loc, fakeRouting{}), reqs, loc
}

func shoppingCart(productID int64, qty int) ruleengine.CartItem {
	return ruleengine.CartItem{
		ProductID: productID,
		Quantity:  qty,
		StoreID:   1,
		CartType:  ruleengine.CartTypeShoppingCart,
	}
}

// --- CheckRequirement ---

func TestRule_CheckRequirement(t *testing.T) {
	t.Parallel()

	const requirementID = int64(42)
	key := SettingKey(requirementID)

	customerWith := func(items ...ruleengine.CartItem) *Customer {
		return &Customer{ID: 7, CartItems: items}
	}

	tests := []struct {
		name          string
		configuration *string // nil = setting absent
		customer      *Customer
		want          ValidationResult
	}{
		{
			name:          "Should be valid when no configuration is stored",
			configuration: nil,
			customer:      customerWith(),
			want:          ValidationResult{IsValid: true, Reason: ReasonNoConfiguration},
		},
		{
			name:          "Should be valid when configuration is whitespace only",
			configuration: ptr("   "),
			customer:      customerWith(),
			want:          ValidationResult{IsValid: true, Reason: ReasonNoConfiguration},
		},
		{
			name:          "Should be invalid without a customer when configuration exists",
			configuration: ptr("77"),
			customer:      nil,
			want:          ValidationResult{IsValid: false, Reason: ReasonNoCustomer},
		},
		{
			name:          "Should match a plain product id regardless of quantity",
			configuration: ptr("77"),
			customer:      customerWith(shoppingCart(77, 2)),
			want:          ValidationResult{IsValid: true, Reason: ruleengine.ReasonRuleMatch},
		},
		{
			name:          "Should match an exact quantity",
			configuration: ptr("123:2"),
			customer:      customerWith(shoppingCart(123, 2)),
			want:          ValidationResult{IsValid: true, Reason: ruleengine.ReasonRuleMatch},
		},
		{
			name:          "Should not match a different exact quantity",
			configuration: ptr("123:3"),
			customer:      customerWith(shoppingCart(123, 2)),
			want:          ValidationResult{IsValid: false, Reason: ruleengine.ReasonNoMatch},
		},
		{
			name:          "Should match inside an inclusive quantity range",
			configuration: ptr("156:3-8"),
			customer:      customerWith(shoppingCart(156, 5)),
			want:          ValidationResult{IsValid: true, Reason: ruleengine.ReasonRuleMatch},
		},
		{
			name:          "Should not match outside the quantity range",
			configuration: ptr("156:9-10"),
			customer:      customerWith(shoppingCart(156, 5)),
			want:          ValidationResult{IsValid: false, Reason: ruleengine.ReasonNoMatch},
		},
		{
			name:          "Should abort on malformed quantity and ignore later matching tokens",
			configuration: ptr("77:abc,123"),
			customer:      customerWith(shoppingCart(123, 1)),
			want:          ValidationResult{IsValid: false, Reason: ruleengine.ReasonParseAbort},
		},
		{
			name:          "Should skip an unparsable plain token without aborting",
			configuration: ptr("abc"),
			customer:      customerWith(shoppingCart(77, 1)),
			want:          ValidationResult{IsValid: false, Reason: ruleengine.ReasonNoMatch},
		},
		{
			name:          "Should sum quantities across cart lines before comparing",
			configuration: ptr("10:3"),
			customer:      customerWith(shoppingCart(10, 1), shoppingCart(10, 2)),
			want:          ValidationResult{IsValid: true, Reason: ruleengine.ReasonRuleMatch},
		},
		{
			name:          "Should ignore wishlist items",
			configuration: ptr("77"),
			customer: customerWith(ruleengine.CartItem{
				ProductID: 77, Quantity: 1, StoreID: 1, CartType: ruleengine.CartTypeWishlist,
			}),
			want: ValidationResult{IsValid: false, Reason: ruleengine.ReasonNoMatch},
		},
		{
			name:          "Should ignore items from another store",
			configuration: ptr("77"),
			customer: customerWith(ruleengine.CartItem{
				ProductID: 77, Quantity: 1, StoreID: 2, CartType: ruleengine.CartTypeShoppingCart,
			}),
			want: ValidationResult{IsValid: false, Reason: ruleengine.ReasonNoMatch},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings := &fakeSettings{values: map[string]string{}}
			if tt.configuration != nil {
				settings.values[key] = *tt.configuration
			}
			rule, _, _ := newTestRule(settings)

			got, err := rule.CheckRequirement(context.Background(), &ValidationRequest{
				DiscountRequirementID: requirementID,
				Customer:              tt.customer,
				StoreID:               1,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Should return ErrNilRequest on nil request", func(t *testing.T) {
		t.Parallel()

		rule, _, _ := newTestRule(&fakeSettings{})

		got, err := rule.CheckRequirement(context.Background(), nil)

		assert.ErrorIs(t, err, ErrNilRequest)
		assert.False(t, got.IsValid)
	})

	t.Run("Should fail closed and surface settings store errors", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("connection refused")
		rule, _, _ := newTestRule(&fakeSettings{err: storeErr})

		got, err := rule.CheckRequirement(context.Background(), &ValidationRequest{
			DiscountRequirementID: requirementID,
			Customer:              &Customer{ID: 7},
			StoreID:               1,
		})

		assert.ErrorIs(t, err, storeErr)
		assert.False(t, got.IsValid)
	})
}

// --- GetConfigurationURL ---

func TestRule_GetConfigurationURL(t *testing.T) {
	t.Parallel()

	rule, _, _ := newTestRule(&fakeSettings{})

	t.Run("Should build the configure path without a requirement id for new requirements", func(t *testing.T) {
		t.Parallel()

		got := rule.GetConfigurationURL(5, 0)

		assert.Equal(t, "Admin/DiscountRulesHasOneProduct/Configure?discountId=5", got)
		assert.False(t, strings.HasPrefix(got, "/"), "leading path separator must be stripped")
	})

	t.Run("Should include the requirement id when editing", func(t *testing.T) {
		t.Parallel()

		got := rule.GetConfigurationURL(5, 42)

		assert.Equal(t, "Admin/DiscountRulesHasOneProduct/Configure?discountId=5&discountRequirementId=42", got)
	})
}

// --- Install / Uninstall ---

func TestRule_Install(t *testing.T) {
	t.Parallel()

	rule, _, loc := newTestRule(&fakeSettings{})

	require.NoError(t, rule.Install(context.Background()))

	assert.Len(t, loc.resources, 4)
	for _, res := range localeResources {
		assert.Contains(t, loc.resources, res.key)
	}

	// Idempotency: a second install updates in place rather than failing.
	require.NoError(t, rule.Install(context.Background()))
	assert.Len(t, loc.resources, 4)
}

func TestRule_Uninstall(t *testing.T) {
	t.Parallel()

	t.Run("Should delete only this rule's requirement records plus all resources", func(t *testing.T) {
		t.Parallel()

		settings := &fakeSettings{}
		reqs := &fakeRequirements{all: []DiscountRequirement{
			{ID: 1, DiscountID: 10, RuleSystemName: SystemName},
			{ID: 2, DiscountID: 10, RuleSystemName: "DiscountRequirement.MustBeAssignedToCustomerRole"},
			{ID: 3, DiscountID: 11, RuleSystemName: SystemName},
		}}
		loc := &fakeLocalization{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		rule := New(logger, settings, reqs, loc, fakeRouting{})

		require.NoError(t, rule.Uninstall(context.Background()))

		sort.Slice(reqs.deleted, func(i, j int) bool { return reqs.deleted[i] < reqs.deleted[j] })
		assert.Equal(t, []int64{1, 3}, reqs.deleted)
		assert.Len(t, loc.deleted, 4)
	})

	t.Run("Should succeed when no requirements exist", func(t *testing.T) {
		t.Parallel()

		rule, reqs, loc := newTestRule(&fakeSettings{})

		require.NoError(t, rule.Uninstall(context.Background()))

		assert.Empty(t, reqs.deleted)
		assert.Len(t, loc.deleted, 4)
	})
}

func TestSettingKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DiscountRequirement.HasOneProduct-42", SettingKey(42))
}

func ptr(s string) *string { return &s }
