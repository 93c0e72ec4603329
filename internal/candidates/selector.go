// Package candidates picks the products shown to a recommendation backend
// for a given customer.
package candidates

import (
	"sort"

	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/shared/metrics"
	"shopping-buddy/internal/shared/telemetry"
)

// fallbackMultiplier widens the top-rated fallback pool before exclusion.
const fallbackMultiplier = 2

// Select returns up to maxCandidates products for customerID, ranked by
// season match then rating. It never mutates store and returns an empty
// slice when the customer is unknown or the catalog is empty.
func Select(store *catalog.Store, customerID string, maxCandidates int) []catalog.Product {
	out := selectCandidates(store, customerID, maxCandidates)
	metrics.ObserveCandidates(len(out))
	return out
}

func selectCandidates(store *catalog.Store, customerID string, maxCandidates int) []catalog.Product {
	if store == nil || maxCandidates <= 0 {
		return []catalog.Product{}
	}
	customer, ok := store.Customer(customerID)
	if !ok {
		telemetry.Warn("candidates.customer_not_found", map[string]any{"customer_id": customerID})
		return []catalog.Product{}
	}
	all := store.Products()
	if len(all) == 0 {
		telemetry.Warn("candidates.empty_catalog", map[string]any{
			"customer_id": customerID,
			"error":       catalog.ErrEmptyCatalog,
		})
		return []catalog.Product{}
	}

	interested := interestedCategories(customer)
	pool := filterByCategory(all, interested)
	if len(pool) == 0 {
		telemetry.Info("candidates.fallback_top_rated", map[string]any{"customer_id": customerID})
		pool = topRated(all, maxCandidates*fallbackMultiplier)
	}

	pool = excludePurchased(pool, purchasedIDs(customer, store))
	rank(pool, customer.Season)

	if len(pool) > maxCandidates {
		pool = pool[:maxCandidates]
	}
	telemetry.Info("candidates.selected", map[string]any{
		"customer_id": customerID,
		"categories":  len(interested),
		"count":       len(pool),
	})
	return pool
}

// interestedCategories collects the main categories of every browsing and
// purchase entry.
func interestedCategories(c catalog.Customer) map[string]struct{} {
	set := make(map[string]struct{})
	for _, history := range [][]string{c.BrowsingHistory, c.PurchaseHistory} {
		for _, item := range history {
			if main := catalog.MainCategory(item); main != "" {
				set[main] = struct{}{}
			}
		}
	}
	return set
}

func filterByCategory(products []catalog.Product, interested map[string]struct{}) []catalog.Product {
	if len(interested) == 0 {
		return nil
	}
	var out []catalog.Product
	for _, p := range products {
		if _, ok := interested[p.MainCategory()]; ok {
			out = append(out, p)
		}
	}
	return out
}

func topRated(products []catalog.Product, limit int) []catalog.Product {
	sorted := make([]catalog.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// purchasedIDs keeps only purchase entries that name a known product.
func purchasedIDs(c catalog.Customer, store *catalog.Store) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, item := range c.PurchaseHistory {
		if store.HasProduct(item) {
			ids[item] = struct{}{}
		}
	}
	return ids
}

func excludePurchased(products []catalog.Product, purchased map[string]struct{}) []catalog.Product {
	if len(purchased) == 0 {
		return products
	}
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if _, bought := purchased[p.ID]; !bought {
			out = append(out, p)
		}
	}
	return out
}

// rank orders season matches first when season is set, then by rating.
func rank(products []catalog.Product, season string) {
	sort.SliceStable(products, func(i, j int) bool {
		if season != "" {
			mi := products[i].Season == season
			mj := products[j].Season == season
			if mi != mj {
				return mi
			}
		}
		return products[i].Rating > products[j].Rating
	})
}
