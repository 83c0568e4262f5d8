package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/testutil"
)

func TestSuggestionService_Search(t *testing.T) {
	geocoder := new(testutil.MockGeocoderClient)
	svc := NewSuggestionService(geocoder, testutil.NewMemCache(), "village")

	geocoder.On("Search", mock.Anything, "Porto", "pt", suggestionLimit).Return([]domain.Suggestion{
		{PlaceID: "1", DisplayName: "Porto, Portugal", AddressType: "city"},
		{PlaceID: "2", DisplayName: "Porto, Portugal", AddressType: "city"},
		{PlaceID: "3", DisplayName: "Porto Covo, Sines", AddressType: "village"},
		{PlaceID: "4", DisplayName: "Porto Moniz, Madeira", AddressType: "town"},
	}, nil).Once()

	got, err := svc.Search(context.Background(), "  Porto ", "PT")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].PlaceID)
	assert.Equal(t, "4", got[1].PlaceID)

	cached, err := svc.Search(context.Background(), "porto", "pt")
	require.NoError(t, err)
	assert.Equal(t, got, cached)
	geocoder.AssertExpectations(t)
}

func TestSuggestionService_Search_EmptyText(t *testing.T) {
	geocoder := new(testutil.MockGeocoderClient)
	svc := NewSuggestionService(geocoder, nil, "village")

	_, err := svc.Search(context.Background(), "   ", "en")
	assert.ErrorIs(t, err, domain.ErrEmptySearch)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSuggestionService_Search_UpstreamFailure(t *testing.T) {
	geocoder := new(testutil.MockGeocoderClient)
	svc := NewSuggestionService(geocoder, nil, "village")

	geocoder.On("Search", mock.Anything, "Lisbon", "en", suggestionLimit).Return(nil, errors.New("dial tcp: timeout"))

	_, err := svc.Search(context.Background(), "Lisbon", "en")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
