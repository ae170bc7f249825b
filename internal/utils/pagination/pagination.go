package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Pagination struct {
	Page   int
	Limit  int
	Offset int
	Total  int64
}

// ParseFromRequest handles pagination parameters from Fiber context.
// Invalid values fall back to page 1 and the default limit; limit is capped at MaxLimit.
func ParseFromRequest(c *fiber.Ctx) Pagination {
	return New(c.Query("page", "1"), c.Query("limit", strconv.Itoa(DefaultLimit)))
}

// New builds a Pagination from raw page and limit strings.
func New(pageStr, limitStr string) Pagination {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns the number of pages needed for Total items.
func (p Pagination) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	pages := p.Total / int64(p.Limit)
	if p.Total%int64(p.Limit) > 0 {
		pages++
	}
	return pages
}

// Response creates a standardized pagination response
func Response(p Pagination, data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
		"meta": fiber.Map{
			"current_page": p.Page,
			"per_page":     p.Limit,
			"total_items":  p.Total,
			"total_pages":  p.TotalPages(),
		},
	}
}
