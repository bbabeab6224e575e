package response

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const PerPage = 10

// MaxPage keeps the row offset of any page within a 32-bit integer.
const MaxPage = math.MaxInt32/PerPage + 1

// Page is the pagination envelope clients already consume.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Page[T]{Data: data, CurrentPage: page, PerPage: perPage, Total: total, LastPage: last}
}

// PageNumber reads ?page=, defaulting to 1 and capped at MaxPage.
func PageNumber(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
