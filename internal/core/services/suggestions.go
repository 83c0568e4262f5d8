package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

const suggestionLimit = 5

type SuggestionService struct {
	geocoder     ports.GeocoderClient
	cache        ports.Cache
	excludedType string
}

func NewSuggestionService(geocoder ports.GeocoderClient, cache ports.Cache, excludedType string) *SuggestionService {
	if cache == nil {
		cache = ports.NoopCache{}
	}
	return &SuggestionService{geocoder: geocoder, cache: cache, excludedType: excludedType}
}

// Search returns location candidates for text, without the excluded address
// type and with duplicate display names collapsed to the first one.
func (s *SuggestionService) Search(ctx context.Context, text, locale string) ([]domain.Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptySearch
	}
	locale = strings.ToLower(strings.TrimSpace(locale))
	key := "suggest|" + locale + "|" + strings.ToLower(text)

	if raw, ok := s.cache.Get(key); ok {
		var cached []domain.Suggestion
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	candidates, err := s.geocoder.Search(ctx, text, locale, suggestionLimit)
	if err != nil {
		log.WithError(err).WithField("locale", locale).Warn("location search failed")
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: geocoder: %v", domain.ErrStoreUnavailable, err)
	}

	out := make([]domain.Suggestion, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if s.excludedType != "" && c.AddressType == s.excludedType {
			continue
		}
		if _, dup := seen[c.DisplayName]; dup {
			continue
		}
		seen[c.DisplayName] = struct{}{}
		out = append(out, c)
	}

	if raw, err := json.Marshal(out); err == nil {
		s.cache.Set(key, raw)
	}
	return out, nil
}
