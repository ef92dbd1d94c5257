package hasoneproduct

import (
	"context"
	"fmt"
	"log/slog"
)

// localeResource pairs a resource key with its default English value.
type localeResource struct {
	key   string
	value string
}

// localeResources are the UI strings the configuration screen renders.
// Install registers them; Uninstall removes them.
var localeResources = []localeResource{
	{
		key:   "Plugins.DiscountRules.HasOneProduct.Fields.ProductIds",
		value: "Restricted product ids",
	},
	{
		key:   "Plugins.DiscountRules.HasOneProduct.Fields.ProductIds.Hint",
		value: "The comma-separated list of product identifiers (e.g. 77, 123, 156). You can find a product id on its details page. You can also specify the comma-separated list of product identifiers with quantities ({Product ID}:{Quantity}. for example, 77:1, 123:2, 156:3). And you can also specify the comma-separated list of product identifiers with quantity range ({Product ID}:{Min quantity}-{Max quantity}. for example, 77:1-3, 123:2-5, 156:3-8).",
	},
	{
		key:   "Plugins.DiscountRules.HasOneProduct.Fields.ProductIds.AddNew",
		value: "Add product",
	},
	{
		key:   "Plugins.DiscountRules.HasOneProduct.Fields.ProductIds.Choose",
		value: "Choose",
	},
}

// Install registers the rule's localized UI strings.
// Existing resources are updated in place, so install is idempotent.
func (r *Rule) Install(ctx context.Context) error {
	for _, res := range localeResources {
		if err := r.localization.AddOrUpdate(ctx, res.key, res.value); err != nil {
			return fmt.Errorf("failed to register locale resource %q: %w", res.key, err)
		}
	}

	r.logger.Info("rule installed",
		slog.String("rule", SystemName),
		slog.Int("locale_resources", len(localeResources)),
	)
	return nil
}

// Uninstall deletes every discount requirement record belonging to this rule,
// then removes the rule's localized UI strings. Resource deletion follows
// delete-if-present semantics: an absent resource is not an error.
func (r *Rule) Uninstall(ctx context.Context) error {
	requirements, err := r.requirements.GetAllRequirements(ctx)
	if err != nil {
		return fmt.Errorf("failed to list discount requirements: %w", err)
	}

	removed := 0
	for _, req := range requirements {
		if req.RuleSystemName != SystemName {
			continue
		}
		if err := r.requirements.Delete(ctx, req); err != nil {
			return fmt.Errorf("failed to delete discount requirement %d: %w", req.ID, err)
		}
		removed++
	}

	for _, res := range localeResources {
		if err := r.localization.Delete(ctx, res.key); err != nil {
			return fmt.Errorf("failed to delete locale resource %q: %w", res.key, err)
		}
	}

	r.logger.Info("rule uninstalled",
		slog.String("rule", SystemName),
		slog.Int("requirements_removed", removed),
	)
	return nil
}
