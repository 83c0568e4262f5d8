package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/core/domain"
)

const defaultSearchLimit = 20

// Search runs a free-text query over the explore view. Quality is a tier
// and, when given, replaces the purchasable-tier restriction just as an
// explicit tier filter does on Explore.
func (s *CatalogService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	text := strings.TrimSpace(req.Query)
	if text == "" {
		return nil, domain.ErrEmptySearch
	}
	sort, err := domain.ParseSortKey(req.Sort)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if s.maxPageSize > 0 && limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	applied := map[string]string{}
	filters := domain.FilterSet{{Field: domain.FieldText, Op: domain.OpContains, Values: []string{text}}}
	for _, f := range []struct {
		name  string
		field domain.FilterField
		value string
	}{
		{"style", domain.FieldStyle, req.Style},
		{"composition", domain.FieldComposition, req.Composition},
		{"quality", domain.FieldTier, req.Quality},
	} {
		v := strings.TrimSpace(f.value)
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		filters = append(filters, domain.Eq(f.field, v))
		applied[f.name] = v
	}

	page, err := s.Explore(ctx, domain.PageRequest{Filters: filters, Sort: sort, Page: 1, PageSize: limit})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"query": text, "total": page.Total}).Debug("map search")

	return &domain.SearchResult{
		Items:   page.Items,
		Total:   page.Total,
		Query:   text,
		Filters: applied,
		Limit:   limit,
	}, nil
}
