package handlers

import (
	"errors"
	"strconv"

	"raydrip/internal/catalog"
)

var errInvalidPagination = errors.New("invalid pagination params")

// parsePaginationParams defaults to the first page of DefaultLimit items and
// caps the limit at MaxLimit.
func parsePaginationParams(pageStr, limitStr string) (int, int, error) {
	page := catalog.DefaultPage
	limit := catalog.DefaultLimit

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = l
	}
	if limit > catalog.MaxLimit {
		limit = catalog.MaxLimit
	}

	return page, limit, nil
}
