package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestImportService(products *fakeProductRepo, categories []models.Category, brands []models.Brand) *ImportService {
	resolver := NewReferenceResolver(
		&fakeCategoryRepo{categories: categories},
		&fakeBrandRepo{brands: brands},
	)
	svc := NewImportService(products, resolver)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return svc
}

func defaultRefs() ([]models.Category, []models.Brand) {
	return []models.Category{
			{ID: primitive.NewObjectID(), Name: "uncategorized", Slug: "uncategorized", Path: []primitive.ObjectID{}},
			{ID: primitive.NewObjectID(), Name: "Lighting", Slug: "lighting", Path: []primitive.ObjectID{}},
		}, []models.Brand{
			{ID: primitive.NewObjectID(), Name: "unknown", Slug: "unknown"},
			{ID: primitive.NewObjectID(), Name: "Acme", Slug: "acme"},
		}
}

func TestProcessImportRowWithoutIdentifierFails(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{}
	svc := newTestImportService(repo, cats, brands)

	result, err := svc.ProcessImport(context.Background(), "name,price\n,49.99\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 || result.Failed != 1 || result.Succeeded != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 2 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Error, "name, slug, sku or model number") {
		t.Fatalf("error should name the identifier fields: %q", result.Errors[0].Error)
	}
	if len(repo.insertedBatch) != 0 {
		t.Fatalf("nothing should have been inserted")
	}
}

func TestProcessImportAppliesDefaults(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{}
	svc := newTestImportService(repo, cats, brands)

	result, err := svc.ProcessImport(context.Background(), "modelnumber,price\nX-99,\"£1,299.99\"\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.DefaultsApplied != 1 {
		t.Fatalf("expected one row with defaults, got %d", result.DefaultsApplied)
	}

	if len(repo.insertedBatch) != 1 || len(repo.insertedBatch[0]) != 1 {
		t.Fatalf("expected one inserted product")
	}
	p := repo.insertedBatch[0][0]
	if p.Name != "X-99" {
		t.Fatalf("name should default to the model number, got %q", p.Name)
	}
	if !strings.HasPrefix(p.Slug, "x-99-") {
		t.Fatalf("slug should be generated with a unique suffix, got %q", p.Slug)
	}
	if p.Price != 1299.99 {
		t.Fatalf("currency-formatted price mishandled: %v", p.Price)
	}
	if p.ListPrice != 1299.99 {
		t.Fatalf("missing list price should fall back to price, got %v", p.ListPrice)
	}
	if len(p.Images) != 1 || p.Images[0] != placeholderImageURL {
		t.Fatalf("expected placeholder image, got %v", p.Images)
	}
	if p.BrandID == nil || *p.BrandID != brands[0].ID {
		t.Fatalf("brand should default to %q", defaultBrandName)
	}
	if p.CategoryID == nil || *p.CategoryID != cats[0].ID {
		t.Fatalf("category should default to %q", defaultCategoryName)
	}
	if len(p.CategoryHierarchy) != 1 || p.CategoryHierarchy[0] != cats[0].ID {
		t.Fatalf("unexpected hierarchy: %v", p.CategoryHierarchy)
	}

	found := false
	for _, w := range result.Warnings {
		if w.Row == 2 && strings.Contains(w.Warning, "defaults applied") {
			found = true
			for _, field := range []string{"name", "slug", "brand", "category", "listPrice", "images"} {
				if !strings.Contains(w.Warning, field) {
					t.Fatalf("warning should list %q: %q", field, w.Warning)
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected a defaults warning, got %v", result.Warnings)
	}
}

func TestProcessImportDuplicatePriority(t *testing.T) {
	cats, brands := defaultRefs()
	acme := brands[1]
	repo := &fakeProductRepo{products: []models.Product{{
		ID:          primitive.NewObjectID(),
		Name:        "Desk Lamp",
		Slug:        "desk-lamp",
		SKU:         "DL-1",
		ModelNumber: "M-77",
		BrandID:     &acme.ID,
	}}}
	svc := newTestImportService(repo, cats, brands)

	csv := "name,slug,sku,modelnumber,brand\n" +
		"Other,desk-lamp,NEW-1,NEW-M,Acme\n" + // slug collides, slug wins
		"Other2,fresh-slug,DL-1,NEW-M,Acme\n" + // sku collides
		"Other3,fresh-slug2,NEW-2,M-77,Acme\n" + // model number collides
		"Desk Lamp,fresh-slug3,NEW-3,NEW-M2,Acme\n" // name+brand collides

	result, err := svc.ProcessImport(context.Background(), csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 0 || result.Failed != 4 || result.DuplicatesFound != 4 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	wantFields := []string{"slug", "sku", "model number", "name and brand"}
	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %v", result.Errors)
	}
	byRow := make(map[int]string)
	for _, e := range result.Errors {
		byRow[e.Row] = e.Error
	}
	for i, field := range wantFields {
		msg := byRow[i+2]
		if !strings.Contains(msg, "same "+field) {
			t.Fatalf("row %d should report a %s duplicate, got %q", i+2, field, msg)
		}
	}
}

func TestProcessImportIsIdempotent(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{}
	svc := newTestImportService(repo, cats, brands)

	csv := "name,slug,category,brand\nDesk Lamp,desk-lamp,Lighting,Acme\n"

	first, err := svc.ProcessImport(context.Background(), csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Succeeded != 1 {
		t.Fatalf("first import should insert, got %+v", first)
	}

	second, err := svc.ProcessImport(context.Background(), csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Succeeded != 0 || second.DuplicatesFound != 1 {
		t.Fatalf("second import should be all duplicates, got %+v", second)
	}
	if len(repo.products) != 1 {
		t.Fatalf("replayed import must not add products, have %d", len(repo.products))
	}
}

func TestProcessImportMapsBulkWriteFailures(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{insertFailures: map[int]string{
		1: "E11000 duplicate key error collection: storefront.products index: slug_1",
	}}
	svc := newTestImportService(repo, cats, brands)

	csv := "name,slug\nA,a-1\nB,b-1\nC,c-1\n"
	result, err := svc.ProcessImport(context.Background(), csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 || result.DuplicatesFound != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("write error should map back to row 3, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Error, "already exists") {
		t.Fatalf("raw driver error should be rewritten, got %q", result.Errors[0].Error)
	}
}

func TestProcessImportBatches(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{}
	svc := newTestImportService(repo, cats, brands)

	var sb strings.Builder
	sb.WriteString("name,slug\n")
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "Product %d,product-%d\n", i, i)
	}

	result, err := svc.ProcessImport(context.Background(), sb.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 120 {
		t.Fatalf("expected 120 inserts, got %+v", result)
	}
	if len(repo.insertedBatch) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(repo.insertedBatch))
	}
	sizes := []int{len(repo.insertedBatch[0]), len(repo.insertedBatch[1]), len(repo.insertedBatch[2])}
	if sizes[0] != importBatchSize || sizes[1] != importBatchSize || sizes[2] != 20 {
		t.Fatalf("unexpected batch sizes: %v", sizes)
	}
}

func TestProcessImportUnknownBrandIsRowError(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{}
	svc := newTestImportService(repo, cats, brands)

	result, err := svc.ProcessImport(context.Background(), "name,brand\nLamp,Nonexistent\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if !strings.Contains(result.Errors[0].Error, `brand "Nonexistent" not found`) {
		t.Fatalf("unexpected error message: %q", result.Errors[0].Error)
	}
}

func TestValidateImportInsertsNothing(t *testing.T) {
	cats, brands := defaultRefs()
	repo := &fakeProductRepo{}
	svc := newTestImportService(repo, cats, brands)

	csv := "name,slug\nLamp,lamp\nDesk,desk\nBroken\n"
	validation, err := svc.ValidateImport(context.Background(), csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validation.TotalRows != 3 || validation.ValidRows != 2 || validation.InvalidRows != 1 {
		t.Fatalf("unexpected validation: %+v", validation)
	}
	if len(repo.insertedBatch) != 0 || len(repo.products) != 0 {
		t.Fatalf("dry run must not write")
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"49.99", 49.99, true},
		{"$1,299.00", 1299.0, true},
		{"£85", 85, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseNumeric(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseNumeric(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDimensions(t *testing.T) {
	if d := parseDimensions(`{"width":60,"height":85,"depth":60,"unit":"cm"}`); d == nil || d.Width != 60 || d.Height != 85 || d.Unit != "cm" {
		t.Fatalf("JSON dimensions mishandled: %+v", d)
	}
	if d := parseDimensions("60 cm (W) x 85 cm (H) x 60 cm (D)"); d == nil || d.Width != 60 || d.Height != 85 || d.Depth != 60 || d.Unit != "cm" {
		t.Fatalf("token dimensions mishandled: %+v", d)
	}
	if d := parseDimensions("59.5x84.5x59 cm"); d == nil || d.Width != 59.5 || d.Height != 84.5 || d.Depth != 59 {
		t.Fatalf("positional dimensions mishandled: %+v", d)
	}
	if d := parseDimensions("tall-ish"); d != nil {
		t.Fatalf("garbage should not parse: %+v", d)
	}
}

func TestParseWeight(t *testing.T) {
	if w := parseWeight("7.5 kg"); w == nil || w.Value != 7.5 || w.Unit != "kg" {
		t.Fatalf("unexpected weight: %+v", w)
	}
	if w := parseWeight(`{"value":68,"unit":"kg"}`); w == nil || w.Value != 68 {
		t.Fatalf("JSON weight mishandled: %+v", w)
	}
	if w := parseWeight("heavy"); w != nil {
		t.Fatalf("garbage should not parse: %+v", w)
	}
}

func TestParseSpecifications(t *testing.T) {
	specs := parseSpecifications("Color: Red, Power: 900W")
	if len(specs) != 2 || specs[0].Title != "Color" || specs[1].Value != "900W" {
		t.Fatalf("pair specifications mishandled: %+v", specs)
	}
	specs = parseSpecifications(`[{"title":"Color","value":"Red"}]`)
	if len(specs) != 1 || specs[0].Title != "Color" {
		t.Fatalf("JSON specifications mishandled: %+v", specs)
	}
	if specs := parseSpecifications(""); specs != nil {
		t.Fatalf("empty input should yield nil, got %+v", specs)
	}
}
