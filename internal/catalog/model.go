package catalog

import "strings"

// CategorySeparator splits a compound category such as "Electronics:Phones".
const CategorySeparator = ":"

// Customer is a customer record loaded from the customer CSV.
type Customer struct {
	ID              string
	Age             *int
	Gender          string
	Location        string
	Segment         string
	AvgOrderValue   float64
	Holiday         string
	Season          string
	BrowsingHistory []string
	PurchaseHistory []string
}

// Product is a product record loaded from the product CSV.
type Product struct {
	ID                        string
	Category                  string
	Subcategory               string
	Brand                     string
	Price                     float64
	Rating                    float64
	AvgSimilarRating          float64
	SentimentScore            float64
	RecommendationProbability float64
	Holiday                   string
	Season                    string
	Geography                 string
	SimilarProducts           []string
}

// MainCategory returns the trimmed text before the first separator, or the
// whole trimmed value when there is no separator.
func MainCategory(category string) string {
	main, _, _ := strings.Cut(category, CategorySeparator)
	return strings.TrimSpace(main)
}

// MainCategory returns the product's main category.
func (p Product) MainCategory() string {
	return MainCategory(p.Category)
}
