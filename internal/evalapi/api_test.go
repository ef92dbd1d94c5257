package evalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/ruleengine"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeSettings struct {
	values map[string]string
	err    error
	reads  int
}

func (f *fakeSettings) GetByKey(_ context.Context, key string) (string, bool, error) {
	f.reads++
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

type fakeRequirements struct{}

func (fakeRequirements) GetAllRequirements(context.Context) ([]hasoneproduct.DiscountRequirement, error) {
	return nil, nil
}

func (fakeRequirements) Delete(context.Context, hasoneproduct.DiscountRequirement) error {
	return nil
}

type fakeLocalization struct{}

func (fakeLocalization) AddOrUpdate(context.Context, string, string) error { return nil }
func (fakeLocalization) Delete(context.Context, string) error              { return nil }

type fakeRouting struct{}

func (fakeRouting) BuildActionURL(action, controller string, _ map[string]string) string {
	return "/Admin/" + controller + "/" + action
}

// =============================================================================
// Test harness
// =============================================================================

type testEnv struct {
	api *API
	db  *fakeSettings
	l2  *cache.RedisCache
	srv *miniredis.Miniredis
}

// newTestEnv wires the full read path: otter L1, miniredis-backed L2 and a
// fake PostgreSQL settings store behind the rule.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l2 := cache.NewRedisCache(client)

	l1, err := cache.NewMemoryCache(100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(l1.Close)

	db := &fakeSettings{values: make(map[string]string)}
	tiered := NewTieredSettings(l1, l2, db, nil)

	rule := hasoneproduct.New(nil, tiered, fakeRequirements{}, fakeLocalization{}, fakeRouting{})

	return &testEnv{
		api: NewAPI(rule),
		db:  db,
		l2:  l2,
		srv: srv,
	}
}

func (e *testEnv) check(t *testing.T, payload any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/requirements/check", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	e.api.Router.ServeHTTP(rec, req)
	return rec
}

func shoppingCart(items ...ruleengine.CartItem) *CustomerPayload {
	return &CustomerPayload{ID: 10, CartItems: items}
}

func item(productID int64, quantity int) ruleengine.CartItem {
	return ruleengine.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		StoreID:   1,
		CartType:  ruleengine.CartTypeShoppingCart,
	}
}

// =============================================================================
// Check endpoint
// =============================================================================

func TestHandleCheck(t *testing.T) {
	tests := []struct {
		name           string
		configuration  *string
		request        CheckRequest
		expectedStatus int
		expectedValid  bool
		expectedReason string
	}{
		{
			name:          "Should match when a restricted product is in the cart",
			configuration: strPtr("77, 123:2, 156:3-8"),
			request: CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
				Customer:              shoppingCart(item(77, 1)),
			},
			expectedStatus: http.StatusOK,
			expectedValid:  true,
			expectedReason: ruleengine.ReasonRuleMatch,
		},
		{
			name:          "Should not match when quantities are insufficient",
			configuration: strPtr("123:2"),
			request: CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
				Customer:              shoppingCart(item(123, 1)),
			},
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedReason: ruleengine.ReasonNoMatch,
		},
		{
			name:          "Should abort on a malformed quantity token",
			configuration: strPtr("77:abc, 123"),
			request: CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
				Customer:              shoppingCart(item(123, 1)),
			},
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedReason: ruleengine.ReasonParseAbort,
		},
		{
			name:          "Should pass vacuously when no configuration exists",
			configuration: nil,
			request: CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
				Customer:              shoppingCart(item(77, 1)),
			},
			expectedStatus: http.StatusOK,
			expectedValid:  true,
			expectedReason: hasoneproduct.ReasonNoConfiguration,
		},
		{
			name:          "Should fail when a configuration exists but no customer is given",
			configuration: strPtr("77"),
			request: CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
			},
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedReason: hasoneproduct.ReasonNoCustomer,
		},
		{
			name:          "Should ignore wishlist items",
			configuration: strPtr("77"),
			request: CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
				Customer: shoppingCart(ruleengine.CartItem{
					ProductID: 77,
					Quantity:  1,
					StoreID:   1,
					CartType:  ruleengine.CartTypeWishlist,
				}),
			},
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedReason: ruleengine.ReasonNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.configuration != nil {
				env.db.values[hasoneproduct.SettingKey(tt.request.DiscountRequirementID)] = *tt.configuration
			}

			// Act
			rec := env.check(t, tt.request)

			// Assert
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())

			var resp CheckResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedValid, resp.IsValid)
			assert.Equal(t, tt.expectedReason, resp.Reason)
		})
	}
}

func TestHandleCheck_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Should reject a missing requirement id", func(t *testing.T) {
		rec := env.check(t, CheckRequest{StoreID: 1})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ERR_INVALID_INPUT", resp.Code)
	})

	t.Run("Should reject a non-JSON payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/requirements/check", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		env.api.Router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCheck_FailsClosedOnStoreError(t *testing.T) {
	env := newTestEnv(t)
	env.srv.Close() // L2 unreachable
	env.db.err = fmt.Errorf("connection refused")

	rec := env.check(t, CheckRequest{
		DiscountRequirementID: 1,
		StoreID:               1,
		Customer:              shoppingCart(item(77, 1)),
	})

	// Non-200 means the checkout treats the discount as not eligible.
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_INTERNAL", resp.Code)
}

// =============================================================================
// Tiered read path
// =============================================================================

func TestTieredSettings_ReadPath(t *testing.T) {
	key := hasoneproduct.SettingKey(1)

	t.Run("Should serve from L2 and fill L1", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.l2.SetSetting(context.Background(), key, "77"))

		// First check reads through L2; the fake store is never touched.
		rec := env.check(t, CheckRequest{
			DiscountRequirementID: 1,
			StoreID:               1,
			Customer:              shoppingCart(item(77, 1)),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, env.db.reads)

		// Second check is served from L1 even with Redis gone.
		env.srv.Close()
		rec = env.check(t, CheckRequest{
			DiscountRequirementID: 1,
			StoreID:               1,
			Customer:              shoppingCart(item(77, 1)),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CheckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.IsValid)
		assert.Equal(t, 0, env.db.reads)
	})

	t.Run("Should fall back to the store when both caches miss", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.values[key] = "77"

		rec := env.check(t, CheckRequest{
			DiscountRequirementID: 1,
			StoreID:               1,
			Customer:              shoppingCart(item(77, 1)),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.db.reads)

		// The fallback fills L1, so the next check skips the store.
		rec = env.check(t, CheckRequest{
			DiscountRequirementID: 1,
			StoreID:               1,
			Customer:              shoppingCart(item(77, 1)),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.db.reads)
	})

	t.Run("Should cache negative lookups", func(t *testing.T) {
		env := newTestEnv(t)

		for i := 0; i < 3; i++ {
			rec := env.check(t, CheckRequest{
				DiscountRequirementID: 1,
				StoreID:               1,
				Customer:              shoppingCart(item(77, 1)),
			})
			require.Equal(t, http.StatusOK, rec.Code)

			var resp CheckResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.IsValid)
			assert.Equal(t, hasoneproduct.ReasonNoConfiguration, resp.Reason)
		}

		// Only the first miss reaches the store.
		assert.Equal(t, 1, env.db.reads)
	})
}

func strPtr(s string) *string { return &s }
