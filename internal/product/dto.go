package product

import (
	"net/url"
	"strconv"
	"strings"
)

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

const (
	SortLatest    = "latest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "a_z"
	SortNameDesc  = "z_a"
)

var validSorts = map[string]bool{
	SortLatest:    true,
	SortPriceAsc:  true,
	SortPriceDesc: true,
	SortNameAsc:   true,
	SortNameDesc:  true,
}

const (
	defaultPageSize = 12
	maxPageSize     = 100

	maxNameLength        = 50
	maxDescriptionLength = 500
)

var validCategories = map[string]bool{
	"electronics": true,
	"fashion":     true,
	"books":       true,
	"home":        true,
	"sports":      true,
	"toys":        true,
	"other":       true,
}

type CreateDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     *bool   `json:"inStock,omitempty"`
	Image       string  `json:"image,omitempty"`
}

func (d CreateDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if len(d.Name) > maxNameLength {
		return ValidationError{Msg: "name cannot be more than 50 characters"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return ValidationError{Msg: "description is required"}
	}
	if len(d.Description) > maxDescriptionLength {
		return ValidationError{Msg: "description cannot be more than 500 characters"}
	}
	if d.Price < 0 {
		return ValidationError{Msg: "price cannot be negative"}
	}
	if !validCategories[strings.ToLower(strings.TrimSpace(d.Category))] {
		return ValidationError{Msg: "unknown category"}
	}
	return nil
}

// UpdateDTO carries a partial update. Nil fields are left untouched.
type UpdateDTO struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

func (d UpdateDTO) Validate() error {
	if d.Name != nil {
		if strings.TrimSpace(*d.Name) == "" {
			return ValidationError{Msg: "name cannot be empty"}
		}
		if len(*d.Name) > maxNameLength {
			return ValidationError{Msg: "name cannot be more than 50 characters"}
		}
	}
	if d.Description != nil {
		if strings.TrimSpace(*d.Description) == "" {
			return ValidationError{Msg: "description cannot be empty"}
		}
		if len(*d.Description) > maxDescriptionLength {
			return ValidationError{Msg: "description cannot be more than 500 characters"}
		}
	}
	if d.Price != nil && *d.Price < 0 {
		return ValidationError{Msg: "price cannot be negative"}
	}
	if d.Category != nil && !validCategories[strings.ToLower(strings.TrimSpace(*d.Category))] {
		return ValidationError{Msg: "unknown category"}
	}
	return nil
}

// ListQuery captures the catalog listing filters. Deleted listings are only
// reachable through the permission-gated route that sets IncludeDeleted.
type ListQuery struct {
	Page           int
	PageSize       int
	Search         string
	Category       string
	OwnerID        *int64
	MinPrice       *float64
	MaxPrice       *float64
	InStock        *bool
	Sort           string
	IncludeDeleted bool
}

// ParseListQuery reads the listing filters off the query string, clamping
// pagination and falling back to the default sort on garbage input.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Page:     1,
		PageSize: defaultPageSize,
		Sort:     SortLatest,
	}

	if v, err := strconv.Atoi(values.Get("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(values.Get("pageSize")); err == nil && v > 0 {
		if v > maxPageSize {
			v = maxPageSize
		}
		q.PageSize = v
	}

	q.Search = strings.TrimSpace(values.Get("search"))
	q.Category = strings.TrimSpace(values.Get("category"))

	if v, err := strconv.ParseInt(values.Get("owner"), 10, 64); err == nil {
		q.OwnerID = &v
	}
	if v, err := strconv.ParseFloat(values.Get("minPrice"), 64); err == nil {
		q.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(values.Get("maxPrice"), 64); err == nil {
		q.MaxPrice = &v
	}
	if raw := values.Get("inStock"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			q.InStock = &v
		}
	}

	if sort := values.Get("sort"); validSorts[sort] {
		q.Sort = sort
	}

	return q
}
