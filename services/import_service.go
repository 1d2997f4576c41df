package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	// importBatchSize bounds peak database load: batches run strictly
	// sequentially while rows inside a batch are validated concurrently.
	importBatchSize = 50

	defaultCategoryName = "uncategorized"
	defaultBrandName    = "unknown"
	placeholderImageURL = "/images/placeholder-product.jpg"
)

// ImportService runs the CSV bulk import: parse, per-row validation with
// defaulting and duplicate detection, then batched unordered inserts.
type ImportService struct {
	products repository.ProductRepo
	resolver *ReferenceResolver
	now      func() time.Time
}

func NewImportService(products repository.ProductRepo, resolver *ReferenceResolver) *ImportService {
	return &ImportService{
		products: products,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// rowOutcome is the result of transforming one CSV row.
type rowOutcome struct {
	row       int
	product   *models.Product
	defaulted []string
	duplicate bool
	err       error
}

// ProcessImport parses the CSV text and imports it. Row-level failures never
// abort siblings; only file-level structural problems return an error.
func (s *ImportService) ProcessImport(ctx context.Context, csvText string) (*models.BulkImportResult, error) {
	parsed, err := ParseCSV(csvText)
	if err != nil {
		return nil, err
	}

	result := &models.BulkImportResult{
		Processed: len(parsed.Rows) + len(parsed.Errors),
		Errors:    append([]models.RowError{}, parsed.Errors...),
		Warnings:  append([]models.RowWarning{}, parsed.Warnings...),
	}
	result.Failed = len(parsed.Errors)

	for start := 0; start < len(parsed.Rows); start += importBatchSize {
		end := start + importBatchSize
		if end > len(parsed.Rows) {
			end = len(parsed.Rows)
		}
		s.runBatch(ctx, parsed.Rows[start:end], result, true)
	}

	result.Message = fmt.Sprintf("%d of %d rows imported", result.Succeeded, result.Processed)
	return result, nil
}

// ValidateImport runs the same pipeline as ProcessImport without inserting
// anything, so operators can preview what an import would do.
func (s *ImportService) ValidateImport(ctx context.Context, csvText string) (*models.BulkImportValidation, error) {
	parsed, err := ParseCSV(csvText)
	if err != nil {
		return nil, err
	}

	result := &models.BulkImportResult{
		Processed: len(parsed.Rows) + len(parsed.Errors),
		Errors:    append([]models.RowError{}, parsed.Errors...),
		Warnings:  append([]models.RowWarning{}, parsed.Warnings...),
	}
	result.Failed = len(parsed.Errors)

	for start := 0; start < len(parsed.Rows); start += importBatchSize {
		end := start + importBatchSize
		if end > len(parsed.Rows) {
			end = len(parsed.Rows)
		}
		s.runBatch(ctx, parsed.Rows[start:end], result, false)
	}

	return &models.BulkImportValidation{
		TotalRows:       result.Processed,
		ValidRows:       result.Succeeded,
		InvalidRows:     result.Failed,
		DuplicateRows:   result.DuplicatesFound,
		DefaultsApplied: result.DefaultsApplied,
		Errors:          result.Errors,
		Warnings:        result.Warnings,
	}, nil
}

// runBatch transforms the batch rows concurrently, then (when insert is set)
// performs one unordered bulk insert and maps write errors back to their
// originating rows.
func (s *ImportService) runBatch(ctx context.Context, rows []ImportRow, result *models.BulkImportResult, insert bool) {
	outcomes := make([]rowOutcome, len(rows))
	var wg sync.WaitGroup
	for i := range rows {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = s.transformRow(ctx, rows[i])
		}(i)
	}
	wg.Wait()

	var docs []models.Product
	var docRows []int
	for _, out := range outcomes {
		if out.err != nil {
			result.Failed++
			if out.duplicate {
				result.DuplicatesFound++
			}
			result.Errors = append(result.Errors, models.RowError{Row: out.row, Error: out.err.Error()})
			continue
		}
		if len(out.defaulted) > 0 {
			result.DefaultsApplied++
			result.Warnings = append(result.Warnings, models.RowWarning{
				Row:     out.row,
				Warning: "defaults applied for: " + strings.Join(out.defaulted, ", "),
			})
		}
		docs = append(docs, *out.product)
		docRows = append(docRows, out.row)
	}

	if !insert {
		result.Succeeded += len(docs)
		return
	}
	if len(docs) == 0 {
		return
	}

	inserted, failed, err := s.products.InsertManyUnordered(ctx, docs)
	if err != nil {
		// The whole batch write failed (connectivity, not per-document); every
		// row in it is reported failed.
		for _, rowNum := range docRows {
			result.Failed++
			result.Errors = append(result.Errors, models.RowError{Row: rowNum, Error: friendlyMessage(err.Error())})
		}
		return
	}
	result.Succeeded += inserted
	for idx, msg := range failed {
		result.Failed++
		if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "E11000") {
			result.DuplicatesFound++
		}
		result.Errors = append(result.Errors, models.RowError{Row: docRows[idx], Error: friendlyMessage(msg)})
	}
}

// transformRow applies the full per-row policy: identifier requirement,
// duplicate detection, defaulting, coercion, free-form field parsing and
// reference resolution.
func (s *ImportService) transformRow(ctx context.Context, row ImportRow) rowOutcome {
	out := rowOutcome{row: row.Number}
	get := func(key string) string { return strings.TrimSpace(row.Fields[key]) }

	name := get("name")
	slug := get("slug")
	sku := get("sku")
	modelNumber := get("modelnumber")
	if modelNumber == "" {
		modelNumber = get("model_number")
	}

	if name == "" && slug == "" && sku == "" && modelNumber == "" {
		out.err = fmt.Errorf("%w: row needs at least one of name, slug, sku or model number", apperrors.ErrMissingIdentifier)
		return out
	}

	// Brand resolves first so the name+brand composite duplicate check can use
	// the canonical brand ID.
	brandRef := get("brand")
	var brand *models.Brand
	if brandRef != "" {
		var err error
		brand, err = s.resolver.ResolveBrand(ctx, brandRef)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				out.err = fmt.Errorf("brand %q not found", brandRef)
			} else {
				out.err = err
			}
			return out
		}
	}

	if field, err := s.findDuplicate(ctx, slug, sku, modelNumber, name, brand); err != nil {
		out.err = err
		return out
	} else if field != "" {
		out.duplicate = true
		out.err = fmt.Errorf("%w: a product with the same %s already exists", apperrors.ErrDuplicateProduct, field)
		return out
	}

	now := s.now()
	defaulted := func(field string) { out.defaulted = append(out.defaulted, field) }

	if name == "" {
		switch {
		case modelNumber != "":
			name = modelNumber
		case sku != "":
			name = sku
		default:
			name = fmt.Sprintf("Imported Product %d", now.Unix())
		}
		defaulted("name")
	}
	if slug == "" {
		slug = fmt.Sprintf("%s-%d", Slugify(name), now.UnixMilli())
		defaulted("slug")
	}

	if brand == nil {
		defaulted("brand")
		if resolved, err := s.resolver.ResolveBrand(ctx, defaultBrandName); err == nil {
			brand = resolved
		}
	}

	categoryRef := get("category")
	var category *models.Category
	if categoryRef != "" {
		var err error
		category, err = s.resolver.ResolveCategory(ctx, categoryRef)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				out.err = fmt.Errorf("category %q not found", categoryRef)
			} else {
				out.err = err
			}
			return out
		}
	} else {
		defaulted("category")
		if resolved, err := s.resolver.ResolveCategory(ctx, defaultCategoryName); err == nil {
			category = resolved
		}
	}

	price, priceOK := parseNumeric(get("price"))
	if !priceOK {
		defaulted("price")
	}
	listPrice, listOK := parseNumeric(get("listprice"))
	if !listOK {
		listPrice = price
		defaulted("listPrice")
	}
	stockF, stockOK := parseNumeric(get("countinstock"))
	if !stockOK {
		defaulted("countInStock")
	}

	images := splitList(get("images"))
	if len(images) == 0 {
		images = []string{placeholderImageURL}
		defaulted("images")
	}

	isPublished, _ := strconv.ParseBool(get("ispublished"))
	installationRequired, _ := strconv.ParseBool(get("installationrequired"))

	product := &models.Product{
		Name:                 name,
		Slug:                 slug,
		SKU:                  sku,
		ModelNumber:          modelNumber,
		Description:          get("description"),
		Price:                price,
		ListPrice:            listPrice,
		CountInStock:         int(stockF),
		Images:               images,
		Tags:                 splitList(get("tags")),
		Material:             get("material"),
		Finish:               get("finish"),
		EnergyRating:         get("energyrating"),
		EnergyConsumption:    get("energyconsumption"),
		Capacity:             get("capacity"),
		WarrantyDetails:      get("warrantydetails"),
		InstallationRequired: installationRequired,
		IsPublished:          isPublished,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if dims := parseDimensions(get("dimensions")); dims != nil {
		product.Dimensions = dims
	} else if get("dimensions") != "" {
		zap.L().Warn("Unparseable dimensions, leaving unset",
			zap.Int("row", row.Number), zap.String("value", get("dimensions")))
	}
	if weight := parseWeight(get("weight")); weight != nil {
		product.Weight = weight
	} else if get("weight") != "" {
		zap.L().Warn("Unparseable weight, leaving unset",
			zap.Int("row", row.Number), zap.String("value", get("weight")))
	}
	product.Specifications = parseSpecifications(get("specifications"))

	if brand != nil {
		product.BrandID = &brand.ID
	}
	if category != nil {
		product.CategoryID = &category.ID
		product.CategoryHierarchy = Hierarchy(category)
	} else {
		product.CategoryHierarchy = []primitive.ObjectID{}
	}

	out.product = product
	return out
}

// findDuplicate checks the identity keys in priority order: slug, SKU, model
// number, then the name+brand composite. The first hit wins.
func (s *ImportService) findDuplicate(ctx context.Context, slug, sku, modelNumber, name string, brand *models.Brand) (string, error) {
	type check struct {
		field  string
		filter bson.M
	}
	var checks []check
	if slug != "" {
		checks = append(checks, check{"slug", bson.M{"slug": slug}})
	}
	if sku != "" {
		checks = append(checks, check{"sku", bson.M{"sku": sku}})
	}
	if modelNumber != "" {
		checks = append(checks, check{"model number", bson.M{"model_number": modelNumber}})
	}
	if name != "" && brand != nil {
		checks = append(checks, check{"name and brand", bson.M{"name": name, "brand_id": brand.ID}})
	}

	for _, c := range checks {
		_, err := s.products.FindOne(ctx, c.filter)
		if err == nil {
			return c.field, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return "", err
		}
	}
	return "", nil
}

var (
	currencyChars = regexp.MustCompile(`[^0-9.\-]`)
	dimToken      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([a-z]*)\s*\(?\s*([WHD])\s*\)?`)
	weightToken   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([a-z]*)`)
	numberToken   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// parseNumeric coerces a numeric-looking string, stripping currency symbols
// and thousands separators. ok is false when nothing parseable remains.
func parseNumeric(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	cleaned := currencyChars.ReplaceAllString(raw, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDimensions accepts a JSON object, free-form "<number> <unit> W/H/D"
// tokens, or an "x"-separated positional shorthand like "60x85x60 cm".
func parseDimensions(raw string) *models.Dimensions {
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "{") {
		var dims models.Dimensions
		if err := json.Unmarshal([]byte(raw), &dims); err == nil {
			return &dims
		}
		return nil
	}

	if matches := dimToken.FindAllStringSubmatch(raw, -1); len(matches) > 0 {
		dims := &models.Dimensions{}
		for _, m := range matches {
			value, _ := strconv.ParseFloat(m[1], 64)
			if dims.Unit == "" && m[2] != "" {
				dims.Unit = strings.ToLower(m[2])
			}
			switch strings.ToUpper(m[3]) {
			case "W":
				dims.Width = value
			case "H":
				dims.Height = value
			case "D":
				dims.Depth = value
			}
		}
		return dims
	}

	// Positional fallback: width x height x depth.
	parts := strings.Split(strings.ToLower(raw), "x")
	if len(parts) == 3 {
		numbers := make([]float64, 0, 3)
		unit := ""
		for _, part := range parts {
			num := numberToken.FindString(part)
			if num == "" {
				return nil
			}
			v, _ := strconv.ParseFloat(num, 64)
			numbers = append(numbers, v)
			if rest := strings.TrimSpace(strings.Replace(part, num, "", 1)); rest != "" && unit == "" {
				unit = rest
			}
		}
		return &models.Dimensions{Width: numbers[0], Height: numbers[1], Depth: numbers[2], Unit: unit}
	}
	return nil
}

// parseWeight accepts a JSON object or a "<number> <unit>" string.
func parseWeight(raw string) *models.Weight {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "{") {
		var w models.Weight
		if err := json.Unmarshal([]byte(raw), &w); err == nil {
			return &w
		}
		return nil
	}
	m := weightToken.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	value, _ := strconv.ParseFloat(m[1], 64)
	return &models.Weight{Value: value, Unit: strings.ToLower(m[2])}
}

// parseSpecifications accepts a JSON array of {title,value} objects or
// comma-separated "key: value" pairs.
func parseSpecifications(raw string) []models.Specification {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var specs []models.Specification
		if err := json.Unmarshal([]byte(raw), &specs); err == nil {
			return specs
		}
		return nil
	}

	var specs []models.Specification
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		title := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if title == "" || value == "" {
			continue
		}
		specs = append(specs, models.Specification{Title: title, Value: value})
	}
	return specs
}

// splitList splits a comma-separated-within-field value into trimmed items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// friendlyMessage rewrites known raw driver errors into operator-readable
// causes; unknown messages pass through untouched.
func friendlyMessage(raw string) string {
	switch {
	case strings.Contains(raw, "E11000") || strings.Contains(raw, "duplicate key"):
		return "a product with this slug or SKU already exists"
	case strings.Contains(raw, "context deadline exceeded") || strings.Contains(raw, "timeout"):
		return "the database took too long to respond; try a smaller file"
	case strings.Contains(raw, "connection refused"):
		return "the database is unreachable; try again shortly"
	default:
		return raw
	}
}
