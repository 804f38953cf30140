package utils

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/yukikurage/task-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePaginationParams reads limit and offset from the query string.
// Invalid values are reported per parameter instead of being clamped.
func ParsePaginationParams(query url.Values) (PaginationParams, map[string]string) {
	params := PaginationParams{
		Limit:  constants.DefaultPageLimit,
		Offset: 0,
	}
	problems := make(map[string]string)

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			problems["limit"] = "must be an integer"
		case limit < constants.MinPageLimit || limit > constants.MaxPageLimit:
			problems["limit"] = fmt.Sprintf("must be between %d and %d", constants.MinPageLimit, constants.MaxPageLimit)
		default:
			params.Limit = limit
		}
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			problems["offset"] = "must be an integer"
		case offset < 0:
			problems["offset"] = "must be greater than or equal to 0"
		default:
			params.Offset = offset
		}
	}

	return params, problems
}
