package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		count int
		size  int
		want  int
	}{
		{"empty", 0, 12, 0},
		{"exact", 24, 12, 2},
		{"remainder", 25, 12, 3},
		{"single short page", 5, 12, 1},
		{"zero size", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.count, tt.size))
		})
	}
}

func TestListParamsOffset(t *testing.T) {
	p := ListParams{Page: 1, PageSize: 12}
	assert.Equal(t, 0, p.Offset())

	p.Page = 3
	assert.Equal(t, 24, p.Offset())
	assert.Equal(t, 1, 25-p.Offset(), "page 3 of 25 items holds one item")
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Page: -2, PageSize: 0}.Normalize(0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = ListParams{Page: 2, PageSize: 500}.Normalize(20)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)

	p = ListParams{PageSize: 0}.Normalize(20)
	assert.Equal(t, 20, p.PageSize)
}

func TestNewPage(t *testing.T) {
	p := ListParams{Page: 3, PageSize: 12}
	page := NewPage[int](nil, 25, p)

	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.Page)
}
