package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validation constants.
const (
	MaxPageSize   = 100
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
)

var allowedCSVExtensions = map[string]bool{
	".csv": true,
	".txt": true,
}

// RequestValidator handles all input validation for the catalog handlers.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Struct validates a request payload against its validate tags.
func (rv *RequestValidator) Struct(v interface{}) error {
	return rv.validate.Struct(v)
}

// ParseListFilters reads the listing query parameters. Absent facets default
// to the "all" sentinel, which the query builder treats as no filter.
func (rv *RequestValidator) ParseListFilters(c *gin.Context) (services.ProductListFilters, error) {
	f := services.ProductListFilters{
		Query:    c.DefaultQuery("q", "all"),
		Category: c.DefaultQuery("category", "all"),
		Brand:    c.DefaultQuery("brand", "all"),
		Tag:      c.DefaultQuery("tag", "all"),
		Price:    c.DefaultQuery("price", "all"),
		Rating:   c.DefaultQuery("rating", "all"),
		Stock:    c.DefaultQuery("stock", "all"),
		Sort:     c.DefaultQuery("sort", "best-selling"),
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return f, errors.New("invalid page number")
	}
	f.Page = page

	// pageSize 0 means "use the configured default".
	if raw := strings.TrimSpace(c.Query("pageSize")); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return f, errors.New("invalid page size")
		}
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}
		f.PageSize = pageSize
	}

	return f, nil
}

// ValidateCSVFile checks the uploaded import file's type and size.
func (rv *RequestValidator) ValidateCSVFile(file *multipart.FileHeader) error {
	contentType := file.Header.Get("Content-Type")
	typeOK := contentType == "text/csv" || contentType == "application/csv" || contentType == "text/plain"
	if !typeOK && !allowedCSVExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return errors.New("invalid file type, only CSV files are allowed")
	}
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	return nil
}
