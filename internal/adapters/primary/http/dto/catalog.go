package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"map-catalog-service/internal/core/domain"
)

// PageQuery is the query string of every catalog listing.
type PageQuery struct {
	Page        int      `form:"page"`
	PageSize    int      `form:"page_size"`
	Sort        string   `form:"sort"`
	Cursor      string   `form:"cursor"`
	Tier        string   `form:"tier"`
	Style       string   `form:"style"`
	Composition string   `form:"composition"`
	Filter      []string `form:"filter"`
}

// ToPageRequest builds the page request. Named filters accept a comma
// separated list; "all" or an empty value means no filter. Generic filters
// are "field:value" or "field:op:value".
func (q *PageQuery) ToPageRequest(defaultPageSize int) (domain.PageRequest, error) {
	sort, err := domain.ParseSortKey(q.Sort)
	if err != nil {
		return domain.PageRequest{}, err
	}
	pageSize := q.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	var filters domain.FilterSet
	named := []struct {
		field domain.FilterField
		raw   string
	}{
		{domain.FieldTier, q.Tier},
		{domain.FieldStyle, q.Style},
		{domain.FieldComposition, q.Composition},
	}
	for _, n := range named {
		if p, ok := namedFilter(n.field, n.raw); ok {
			filters = append(filters, p)
		}
	}
	for _, f := range q.Filter {
		p, ok, err := parseFilter(f)
		if err != nil {
			return domain.PageRequest{}, err
		}
		if ok {
			filters = append(filters, p)
		}
	}

	return domain.PageRequest{
		Filters:  filters,
		Sort:     sort,
		Page:     q.Page,
		PageSize: pageSize,
		Cursor:   strings.TrimSpace(q.Cursor),
	}, nil
}

func namedFilter(field domain.FilterField, raw string) (domain.Predicate, bool) {
	values := splitValues(raw)
	if len(values) == 0 {
		return domain.Predicate{}, false
	}
	if len(values) == 1 {
		return domain.Eq(field, values[0]), true
	}
	return domain.In(field, values...), true
}

func parseFilter(raw string) (domain.Predicate, bool, error) {
	parts := strings.SplitN(raw, ":", 3)
	var field, op, value string
	switch len(parts) {
	case 2:
		field, op, value = parts[0], string(domain.OpEq), parts[1]
	case 3:
		field, op, value = parts[0], parts[1], parts[2]
	default:
		return domain.Predicate{}, false, fmt.Errorf("%w: %q", domain.ErrInvalidFilterValue, raw)
	}
	values := splitValues(value)
	if len(values) == 0 {
		return domain.Predicate{}, false, nil
	}
	return domain.Predicate{
		Field:  domain.FilterField(strings.ToLower(strings.TrimSpace(field))),
		Op:     domain.FilterOp(strings.ToLower(strings.TrimSpace(op))),
		Values: values,
	}, true, nil
}

func splitValues(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		out = append(out, v)
	}
	return out
}

type LocationResponse struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type DesignResponse struct {
	Style       string  `json:"style"`
	Composition string  `json:"composition"`
	Aspect      string  `json:"aspect"`
	Landscape   bool    `json:"landscape"`
	Zoom        float64 `json:"zoom"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

type MapResponse struct {
	UID             uuid.UUID        `json:"uid"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
	Owner           string           `json:"owner"`
	Tier            string           `json:"tier"`
	TierName        string           `json:"tier_name"`
	Status          string           `json:"status"`
	Ticket          string           `json:"ticket"`
	Title           string           `json:"title"`
	Subtitle        string           `json:"subtitle"`
	Location        LocationResponse `json:"location"`
	Design          DesignResponse   `json:"design"`
	ImageURL        string           `json:"image_url"`
	Votes           int              `json:"votes"`
	HasVoted        bool             `json:"has_voted"`
	PurchaseCost    int              `json:"purchase_cost"`
	Purchasable     bool             `json:"purchasable"`
	PurchasedFrom   *uuid.UUID       `json:"purchased_from"`
	IsPurchasedCopy bool             `json:"is_purchased_copy"`
	ArchivedAt      *string          `json:"archived_at,omitempty"`
}

// ToMapResponse renders m for viewer. The voter list itself is never
// exposed, only whether viewer is on it.
func ToMapResponse(m *domain.Map, viewer string) MapResponse {
	resp := MapResponse{
		UID:       m.UID,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
		Owner:     m.Owner,
		Tier:      string(m.Tier),
		TierName:  m.Tier.Info().Name,
		Status:    string(m.Status),
		Ticket:    m.Ticket,
		Title:     m.Title,
		Subtitle:  m.Subtitle,
		Location: LocationResponse{
			Name:        m.Location.Name,
			DisplayName: m.Location.DisplayName,
			Lat:         m.Location.Lat,
			Lon:         m.Location.Lon,
		},
		Design: DesignResponse{
			Style:       m.Design.Style,
			Composition: m.Design.Composition,
			Aspect:      m.Design.Aspect,
			Landscape:   m.Design.Landscape,
			Zoom:        m.Design.Zoom,
			Width:       m.Design.Width,
			Height:      m.Design.Height,
		},
		ImageURL:        m.ImageURL,
		Votes:           m.Votes,
		HasVoted:        viewer != "" && m.HasVoter(viewer),
		PurchaseCost:    domain.PurchaseCost(m.Tier),
		Purchasable:     m.Tier.Purchasable(),
		PurchasedFrom:   m.PurchasedFrom,
		IsPurchasedCopy: m.IsPurchasedCopy,
	}
	if m.ArchivedAt != nil {
		archived := m.ArchivedAt.Format(time.RFC3339)
		resp.ArchivedAt = &archived
	}
	return resp
}

type PageResponse struct {
	Items      []MapResponse `json:"items"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func ToPageResponse(p *domain.Page, viewer string) PageResponse {
	items := make([]MapResponse, 0, len(p.Items))
	for _, m := range p.Items {
		items = append(items, ToMapResponse(m, viewer))
	}
	return PageResponse{
		Items:      items,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		Page:       p.Page,
		PageSize:   p.PageSize,
		NextCursor: p.NextCursor,
	}
}

type VoteResponse struct {
	MapID    uuid.UUID `json:"map_id"`
	Votes    int       `json:"votes"`
	HasVoted bool      `json:"has_voted"`
}

type SearchQuery struct {
	Q           string `form:"q"`
	Style       string `form:"style"`
	Composition string `form:"composition"`
	Quality     string `form:"quality"`
	Sort        string `form:"sort"`
	Limit       int    `form:"limit" binding:"omitempty,min=0"`
}

func (q *SearchQuery) ToSearchRequest() domain.SearchRequest {
	return domain.SearchRequest{
		Query:       q.Q,
		Style:       q.Style,
		Composition: q.Composition,
		Quality:     q.Quality,
		Sort:        q.Sort,
		Limit:       q.Limit,
	}
}

type SearchResponse struct {
	Items   []MapResponse     `json:"items"`
	Total   int               `json:"total"`
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters"`
	Limit   int               `json:"limit"`
}

func ToSearchResponse(r *domain.SearchResult, viewer string) SearchResponse {
	items := make([]MapResponse, 0, len(r.Items))
	for _, m := range r.Items {
		items = append(items, ToMapResponse(m, viewer))
	}
	return SearchResponse{
		Items:   items,
		Total:   r.Total,
		Query:   r.Query,
		Filters: r.Filters,
		Limit:   r.Limit,
	}
}
