package utils

import (
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// Page is a validated page/limit pair
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset is the number of rows to skip
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination is the envelope returned next to every paginated list
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination fills in totalPages = ceil(total/limit)
func NewPagination(p Page, total int64) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: totalPages}
}

// NormalizePage clamps page to >= 1 and limit to [1, maxLimit]
func NormalizePage(page, limit, defaultLimit, maxLimit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Page: page, Limit: limit}
}

// ParsePage reads ?page and ?limit from the request
func ParsePage(c *gin.Context, defaultLimit, maxLimit int) Page {
	// Invalid input falls back to the defaults
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return NormalizePage(page, limit, defaultLimit, maxLimit)
}

// OptionalPage is ParsePage for lists that return everything unless the client asks for a page
func OptionalPage(c *gin.Context, defaultLimit, maxLimit int) *Page {
	_, hasPage := c.GetQuery("page")   // ?page present
	_, hasLimit := c.GetQuery("limit") // ?limit present
	if !hasPage && !hasLimit {
		return nil // Whole list
	}
	p := ParsePage(c, defaultLimit, maxLimit)
	return &p
}
