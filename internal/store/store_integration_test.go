//go:build integration

// Package store_test contains integration tests for the Data Access Layer.
// We use the '_test' suffix to enforce black-box testing, ensuring we only
// access the exported API of the store package.
package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/store"
	"github.com/mpontes/promogate/internal/testsupport"
)

// TestPostgresStores_Integration orchestrates the integration tests for the
// repositories. It spins up a real PostgreSQL container once and runs
// scenarios against it.
func TestPostgresStores_Integration(t *testing.T) {
	// 1. Infrastructure Setup
	ctx := context.Background()

	pgContainer, err := testsupport.StartPostgresContainer(ctx)
	require.NoError(t, err, "failed to start postgres container")

	// Ensure resource cleanup even if tests fail
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	settings := store.NewPostgresSettingsStore(pgContainer.DB)
	requirements := store.NewPostgresRequirementsStore(pgContainer.DB)
	localization := store.NewPostgresLocalizationStore(pgContainer.DB)

	// 2. Scenarios
	// We run these sequentially as they share the same container state.

	t.Run("Settings_SetGetDelete", func(t *testing.T) {
		key := hasoneproduct.SettingKey(100)

		// Missing key reports found=false, not an error.
		_, found, err := settings.GetByKey(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)

		// Set then get.
		require.NoError(t, settings.Set(ctx, key, "77, 123:2"))
		value, found, err := settings.GetByKey(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "77, 123:2", value)

		// Upsert replaces in place.
		require.NoError(t, settings.Set(ctx, key, "156:3-8"))
		value, _, err = settings.GetByKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "156:3-8", value)

		// Empty values round-trip and stay distinguishable from misses.
		require.NoError(t, settings.Set(ctx, key, ""))
		value, found, err = settings.GetByKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "", value)

		// Delete, then delete again (idempotent).
		require.NoError(t, settings.Delete(ctx, key))
		_, found, err = settings.GetByKey(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)
		require.NoError(t, settings.Delete(ctx, key))
	})

	t.Run("Settings_ListByPrefix", func(t *testing.T) {
		require.NoError(t, settings.Set(ctx, hasoneproduct.SettingKey(1), "77"))
		require.NoError(t, settings.Set(ctx, hasoneproduct.SettingKey(2), "123:2"))
		require.NoError(t, settings.Set(ctx, "Unrelated.Setting", "x"))

		listed, err := settings.ListByPrefix(ctx, hasoneproduct.SystemName+"-")
		require.NoError(t, err)

		require.Len(t, listed, 2)
		assert.Equal(t, hasoneproduct.SettingKey(1), listed[0].Name)
		assert.Equal(t, "77", listed[0].Value)
		assert.Equal(t, hasoneproduct.SettingKey(2), listed[1].Name)
	})

	t.Run("Requirements_CreateGetTouch", func(t *testing.T) {
		rec, err := requirements.Create(ctx, 5, hasoneproduct.SystemName)
		require.NoError(t, err)
		assert.NotZero(t, rec.ID, "expected DB to assign an ID")
		assert.Equal(t, int64(5), rec.DiscountID)
		assert.Equal(t, hasoneproduct.SystemName, rec.RuleSystemName)
		assert.False(t, rec.CreatedAt.IsZero(), "expected DB to assign CreatedAt")
		assert.False(t, rec.UpdatedAt.IsZero(), "expected DB to assign UpdatedAt")

		fetched, err := requirements.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, fetched.ID)
		assert.Equal(t, rec.DiscountID, fetched.DiscountID)

		touched, err := requirements.Touch(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, touched.UpdatedAt.After(rec.UpdatedAt) || touched.UpdatedAt.Equal(rec.UpdatedAt))

		_, err = requirements.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, store.ErrRequirementNotFound)

		_, err = requirements.Touch(ctx, 999999)
		assert.ErrorIs(t, err, store.ErrRequirementNotFound)
	})

	t.Run("Requirements_ListCountDelete", func(t *testing.T) {
		before, err := requirements.Count(ctx)
		require.NoError(t, err)

		recA, err := requirements.Create(ctx, 6, hasoneproduct.SystemName)
		require.NoError(t, err)
		recB, err := requirements.Create(ctx, 7, hasoneproduct.SystemName)
		require.NoError(t, err)

		after, err := requirements.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+2, after)

		listed, err := requirements.List(ctx, 100, 0)
		require.NoError(t, err)
		ids := make([]int64, 0, len(listed))
		for _, r := range listed {
			ids = append(ids, r.ID)
		}
		assert.Contains(t, ids, recA.ID)
		assert.Contains(t, ids, recB.ID)

		all, err := requirements.GetAllRequirements(ctx)
		require.NoError(t, err)
		assert.Len(t, all, int(after))

		require.NoError(t, requirements.Delete(ctx, recA.Requirement()))
		err = requirements.Delete(ctx, recA.Requirement())
		assert.ErrorIs(t, err, store.ErrRequirementNotFound)
	})

	t.Run("Localization_AddOrUpdateDelete", func(t *testing.T) {
		const key = "Plugins.DiscountRules.HasOneProduct.Fields.ProductIds"

		require.NoError(t, localization.AddOrUpdate(ctx, key, "Restricted product ids"))

		value, found, err := localization.GetByName(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Restricted product ids", value)

		// Upsert is idempotent and replaces the value.
		require.NoError(t, localization.AddOrUpdate(ctx, key, "Updated label"))
		value, _, err = localization.GetByName(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Updated label", value)

		// Delete-if-present semantics.
		require.NoError(t, localization.Delete(ctx, key))
		_, found, err = localization.GetByName(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)
		require.NoError(t, localization.Delete(ctx, key))
	})
}
