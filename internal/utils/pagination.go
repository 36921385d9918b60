package utils

import (
	"strconv"

	"github.com/cogniboard/cogniboard-api/internal/constants"
	"github.com/gin-gonic/gin"
)

// PaginationParams holds offset-based pagination parameters.
// Limit <= 0 means no limit.
type PaginationParams struct {
	Skip  int
	Limit int
}

// GetPaginationParams extracts skip/limit query parameters from the request.
func GetPaginationParams(c *gin.Context) PaginationParams {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	return PaginationParams{
		Skip:  skip,
		Limit: limit,
	}
}
