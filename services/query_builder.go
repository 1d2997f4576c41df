package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"storefront-service/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Named price buckets used as discrete filter facets. The storefront can also
// send an explicit "min-max" range.
const (
	PriceUnder500   = "under500"
	Price500To1000  = "500to1000"
	Price1000To2000 = "1000to2000"
	PriceOver2000   = "over2000"
)

// filterAll is the sentinel meaning "no filter" for a given facet.
const filterAll = "all"

// QueryBuilder translates UI-facing filter parameters into a Mongo predicate
// and sort order shared by the admin and storefront listings.
type QueryBuilder struct {
	resolver *ReferenceResolver
}

func NewQueryBuilder(resolver *ReferenceResolver) *QueryBuilder {
	return &QueryBuilder{resolver: resolver}
}

// BuildProductQuery assembles the AND-combined predicate and the sort order
// for the given filters. An unresolvable category or brand reference yields
// apperrors.ErrNoResults so listings return an empty page instead of failing;
// a malformed explicit price range or rating is a validation error.
func (qb *QueryBuilder) BuildProductQuery(ctx context.Context, f ProductListFilters) (bson.M, bson.D, error) {
	filter := bson.M{}

	if f.PublishedOnly {
		filter["is_published"] = true
	}

	if set(f.Query) {
		filter["name"] = primitive.Regex{Pattern: f.Query, Options: "i"}
	}

	if set(f.Category) {
		cat, err := qb.resolver.ResolveCategory(ctx, f.Category)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil, apperrors.ErrNoResults
			}
			return nil, nil, err
		}
		filter["category_hierarchy"] = cat.ID
	}

	if set(f.Brand) {
		brand, err := qb.resolver.ResolveBrand(ctx, f.Brand)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil, apperrors.ErrNoResults
			}
			return nil, nil, err
		}
		filter["brand_id"] = brand.ID
	}

	if set(f.Tag) {
		filter["tags"] = f.Tag
	}

	if set(f.Price) {
		pricePredicate, err := buildPricePredicate(f.Price)
		if err != nil {
			return nil, nil, err
		}
		filter["price"] = pricePredicate
	}

	if set(f.Rating) {
		floor, err := strconv.ParseFloat(f.Rating, 64)
		if err != nil {
			return nil, nil, apperrors.Validationf("invalid rating filter %q", f.Rating)
		}
		filter["avg_rating"] = bson.M{"$gte": floor}
	}

	if set(f.Stock) {
		stockPredicate, err := buildStockPredicate(f.Stock)
		if err != nil {
			return nil, nil, err
		}
		filter["count_in_stock"] = stockPredicate
	}

	return filter, buildSortOrder(f.Sort), nil
}

func set(v string) bool {
	return v != "" && v != filterAll
}

func buildPricePredicate(price string) (bson.M, error) {
	switch price {
	case PriceUnder500:
		return bson.M{"$lt": 500.0}, nil
	case Price500To1000:
		return bson.M{"$gte": 500.0, "$lte": 1000.0}, nil
	case Price1000To2000:
		return bson.M{"$gt": 1000.0, "$lte": 2000.0}, nil
	case PriceOver2000:
		return bson.M{"$gt": 2000.0}, nil
	}

	// Explicit "min-max" range from the storefront slider.
	parts := strings.SplitN(price, "-", 2)
	if len(parts) != 2 {
		return nil, apperrors.Validationf("invalid price filter %q", price)
	}
	min, errMin := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	max, errMax := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errMin != nil || errMax != nil || min > max {
		return nil, apperrors.Validationf("invalid price range %q", price)
	}
	return bson.M{"$gte": min, "$lte": max}, nil
}

func buildStockPredicate(stock string) (bson.M, error) {
	switch stock {
	case "in-stock":
		return bson.M{"$gt": lowStockThreshold}, nil
	case "low-stock":
		return bson.M{"$gte": 1, "$lte": lowStockThreshold}, nil
	case "out-of-stock":
		return bson.M{"$lte": 0}, nil
	}
	return nil, apperrors.Validationf("invalid stock filter %q", stock)
}

const lowStockThreshold = 5

// buildSortOrder maps a sort key to the Mongo sort document. Every order gets
// a descending _id tiebreaker so pagination is stable.
func buildSortOrder(sort string) bson.D {
	var primary bson.E
	switch sort {
	case "", filterAll, "best-selling":
		primary = bson.E{Key: "num_sales", Value: -1}
	case "price-low-to-high":
		primary = bson.E{Key: "price", Value: 1}
	case "price-high-to-low":
		primary = bson.E{Key: "price", Value: -1}
	case "newest":
		primary = bson.E{Key: "created_at", Value: -1}
	case "avg-customer-review":
		primary = bson.E{Key: "avg_rating", Value: -1}
	default:
		return bson.D{{Key: "_id", Value: -1}}
	}
	return bson.D{primary, {Key: "_id", Value: -1}}
}

// Pagination describes the "showing X-Y of N" window of a listing page.
type Pagination struct {
	Skip       int64
	Limit      int64
	TotalPages int
	From       int
	To         int
}

// BuildPagination computes skip/limit for a 1-based page and the 1-based
// inclusive from/to display range. returned is the number of documents the
// page actually holds.
func BuildPagination(page, pageSize int, total int64, returned int) Pagination {
	if page < 1 {
		page = 1
	}
	p := Pagination{
		Skip:  int64(pageSize) * int64(page-1),
		Limit: int64(pageSize),
	}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if total > 0 && returned > 0 {
		p.From = int(p.Skip) + 1
		p.To = int(p.Skip) + returned
	}
	return p
}
