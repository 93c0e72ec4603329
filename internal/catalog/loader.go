package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"shopping-buddy/internal/shared/storage/object"
	"shopping-buddy/internal/shared/telemetry"
)

// Columns maps CSV headers onto record fields.
type Columns struct {
	CustomerID       string
	CustomerAge      string
	CustomerGender   string
	CustomerLocation string
	CustomerBrowsing string
	CustomerPurchase string
	CustomerSegment  string
	CustomerAvgOrder string
	CustomerHoliday  string
	CustomerSeason   string

	ProductID               string
	ProductCategory         string
	ProductSubcategory      string
	ProductPrice            string
	ProductBrand            string
	ProductAvgSimilarRating string
	ProductRating           string
	ProductSentiment        string
	ProductHoliday          string
	ProductSeason           string
	ProductGeography        string
	ProductSimilar          string
	ProductProbability      string
}

// DefaultColumns returns the header names used by the sample data set.
func DefaultColumns() Columns {
	return Columns{
		CustomerID:       "Customer_ID",
		CustomerAge:      "Age",
		CustomerGender:   "Gender",
		CustomerLocation: "Location",
		CustomerBrowsing: "Browsing_History",
		CustomerPurchase: "Purchase_History",
		CustomerSegment:  "Customer_Segment",
		CustomerAvgOrder: "Avg_Order_Value",
		CustomerHoliday:  "Holiday",
		CustomerSeason:   "Season",

		ProductID:               "Product_ID",
		ProductCategory:         "Category",
		ProductSubcategory:      "Subcategory",
		ProductPrice:            "Price",
		ProductBrand:            "Brand",
		ProductAvgSimilarRating: "Average_Rating_of_Similar_Products",
		ProductRating:           "Product_Rating",
		ProductSentiment:        "Customer_Review_Sentiment_Score",
		ProductHoliday:          "Holiday",
		ProductSeason:           "Season",
		ProductGeography:        "Geographical_Location",
		ProductSimilar:          "Similar_Product_List",
		ProductProbability:      "Probability_of_Recommendation",
	}
}

// Loader reads the customer and product files from an object store.
type Loader struct {
	Store       object.ObjectStore
	Columns     Columns
	CustomerKey string
	ProductKey  string
}

// Load reads both files and builds the in-memory Store.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	if l.Store == nil {
		return nil, errors.New("catalog loader: object store not configured")
	}
	customers, err := l.loadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read customer data: %w", err)
	}
	products, err := l.loadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read product data: %w", err)
	}
	store := NewStore(customers, products)
	telemetry.Info("catalog.loaded", map[string]any{
		"customers": store.CustomerCount(),
		"products":  store.ProductCount(),
	})
	return store, nil
}

func (l *Loader) loadCustomers(ctx context.Context) ([]Customer, error) {
	rc, err := l.Store.Open(ctx, l.CustomerKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadCustomers(rc, l.Columns)
}

func (l *Loader) loadProducts(ctx context.Context) ([]Product, error) {
	rc, err := l.Store.Open(ctx, l.ProductKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadProducts(rc, l.Columns)
}

// ReadCustomers decodes customer rows. Rows without an ID are skipped.
func ReadCustomers(r io.Reader, cols Columns) ([]Customer, error) {
	var out []Customer
	err := readRows(r, func(row rowView) {
		id := row.get(cols.CustomerID)
		if id == "" {
			return
		}
		out = append(out, Customer{
			ID:              id,
			Age:             parseAge(row.get(cols.CustomerAge)),
			Gender:          row.get(cols.CustomerGender),
			Location:        row.get(cols.CustomerLocation),
			Segment:         row.get(cols.CustomerSegment),
			AvgOrderValue:   parseNumber(row.get(cols.CustomerAvgOrder)),
			Holiday:         row.get(cols.CustomerHoliday),
			Season:          row.get(cols.CustomerSeason),
			BrowsingHistory: ParseList(row.get(cols.CustomerBrowsing)),
			PurchaseHistory: ParseList(row.get(cols.CustomerPurchase)),
		})
	})
	return out, err
}

// ReadProducts decodes product rows. Rows without an ID are skipped.
func ReadProducts(r io.Reader, cols Columns) ([]Product, error) {
	var out []Product
	err := readRows(r, func(row rowView) {
		id := row.get(cols.ProductID)
		if id == "" {
			return
		}
		out = append(out, Product{
			ID:                        id,
			Category:                  row.get(cols.ProductCategory),
			Subcategory:               row.get(cols.ProductSubcategory),
			Brand:                     row.get(cols.ProductBrand),
			Price:                     parseNumber(row.get(cols.ProductPrice)),
			Rating:                    parseNumber(row.get(cols.ProductRating)),
			AvgSimilarRating:          parseNumber(row.get(cols.ProductAvgSimilarRating)),
			SentimentScore:            parseNumber(row.get(cols.ProductSentiment)),
			RecommendationProbability: parseNumber(row.get(cols.ProductProbability)),
			Holiday:                   row.get(cols.ProductHoliday),
			Season:                    row.get(cols.ProductSeason),
			Geography:                 row.get(cols.ProductGeography),
			SimilarProducts:           ParseList(row.get(cols.ProductSimilar)),
		})
	})
	return out, err
}

type rowView struct {
	index  map[string]int
	record []string
}

func (v rowView) get(column string) string {
	i, ok := v.index[column]
	if !ok || i >= len(v.record) {
		return ""
	}
	return v.record[i]
}

func readRows(r io.Reader, fn func(rowView)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read row %d: %w", line, err)
		}
		fn(rowView{index: index, record: record})
	}
}

// parseNumber returns 0 for anything that is not a finite number.
func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseAge returns nil for missing, unparseable or zero ages.
func parseAge(raw string) *int {
	v := parseNumber(raw)
	age := int(v)
	if age == 0 {
		return nil
	}
	return &age
}
