package handlers

import (
	"strconv"

	"storefront/internal/apperr"
	"storefront/internal/repository"
)

const maxPageLimit = 100

// parsePagination reads page and limit. Without both, the page covers the
// whole result.
func parsePagination(pageStr, limitStr string, defaultLimit int64) (repository.Page, error) {
	if pageStr == "" && limitStr == "" && defaultLimit == 0 {
		return repository.Page{}, nil
	}

	page := int64(1)
	limit := defaultLimit

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return repository.Page{}, apperr.InvalidInput("Invalid pagination params")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return repository.Page{}, apperr.InvalidInput("Invalid pagination params")
		}
		limit = l
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return repository.Page{Page: page, Limit: limit}, nil
}
