package domain

import (
	"strings"
	"time"
)

const (
	minNameLen     = 3
	minDetailsLen  = 10
	minKeywordsLen = 3
)

// GenerationRequest holds the normalized inputs for one description. Build it
// with NewGenerationRequest; the zero value is not valid.
type GenerationRequest struct {
	ProductName    string
	ProductDetails string
	Keywords       string
}

// ProductRecord is a generated description as stored in the history.
type ProductRecord struct {
	ID             string    `json:"id"`
	ProductName    string    `json:"productName"`
	ProductDetails string    `json:"productDetails"`
	Keywords       string    `json:"keywords"`
	Description    string    `json:"description"`
	Model          string    `json:"model"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation, in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), ", ")
}

func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Message)
	}
	return out
}

// NewGenerationRequest trims and validates the raw form inputs. Minimum
// lengths are in TextLen units.
func NewGenerationRequest(productName, productDetails, keywords string) (GenerationRequest, error) {
	req := GenerationRequest{
		ProductName:    TrimText(productName),
		ProductDetails: TrimText(productDetails),
		Keywords:       FormatKeywords(keywords),
	}

	var fields []FieldError
	if TextLen(req.ProductName) < minNameLen {
		fields = append(fields, FieldError{Field: "productName", Message: "Name is required"})
	}
	if TextLen(req.ProductDetails) < minDetailsLen {
		fields = append(fields, FieldError{Field: "productDetails", Message: "Details must be at least 10 characters"})
	}
	if TextLen(req.Keywords) < minKeywordsLen {
		fields = append(fields, FieldError{Field: "keywords", Message: "Provide at least one keyword"})
	}
	if len(fields) > 0 {
		return GenerationRequest{}, &ValidationError{Fields: fields}
	}
	return req, nil
}

// FormatKeywords splits a comma-separated list, drops blanks and rejoins it
// with ", ".
func FormatKeywords(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = TrimText(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
