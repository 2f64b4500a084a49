package delivery

import (
	"strconv"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bindListParams reads page, search, sort and the filter query parameters.
func bindListParams(c *gin.Context) (domain.ListParams, error) {
	var params domain.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return params, domain.Invalid("invalid query: %v", err)
	}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return params, domain.Invalid("invalid category_id")
		}
		params.CategoryID = &id
	}
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return params, domain.Invalid("invalid user_id")
		}
		params.UserID = &id
	}
	if v := c.Query("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return params, domain.Invalid("invalid min_price")
		}
		params.MinPrice = &d
	}
	if v := c.Query("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return params, domain.Invalid("invalid max_price")
		}
		params.MaxPrice = &d
	}
	if v := c.Query("admin"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return params, domain.Invalid("invalid admin flag")
		}
		params.Admin = &b
	}
	return params, nil
}
