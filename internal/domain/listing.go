package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ListParams carries the page, search, sort and filter inputs of a list view.
// Filters that do not apply to an entity are ignored by its repository.
type ListParams struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Desc     bool   `form:"desc"`

	CategoryID *uuid.UUID       `form:"-"`
	MinPrice   *decimal.Decimal `form:"-"`
	MaxPrice   *decimal.Decimal `form:"-"`
	InStock    bool             `form:"in_stock"`

	Status OrderStatus `form:"status"`
	UserID *uuid.UUID  `form:"-"`

	Admin *bool `form:"-"`
}

// Normalize clamps page and page size. A zero or negative page size falls
// back to defaultSize (or DefaultPageSize when defaultSize is not positive).
func (p ListParams) Normalize(defaultSize int) ListParams {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is (page-1) × pageSize.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(count / size).
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewPage[T any](items []T, total int, p ListParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: TotalPages(total, p.PageSize),
	}
}
