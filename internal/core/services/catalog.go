package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

// Cursor resolution sources, reported to metrics.
const (
	cursorSourceNone  = "none"
	cursorSourceToken = "token"
	cursorSourceCache = "cache"
	cursorSourceScan  = "scan"
)

// CatalogService serves filtered, sorted pages of maps using keyset
// cursors. A page is located, in order of preference, by a cursor token
// from the caller, by a page boundary cached from an earlier request, or by
// scanning (page-1)*pageSize ordered items. The scan costs O(page number)
// and is only taken when neither cursor is available.
//
// Boundaries are cached under their page number, so only requests located
// by page number write them. A token carries no reliable page number.
type CatalogService struct {
	repo        ports.MapRepository
	cursors     ports.Cache
	metrics     ports.Metrics
	maxPageSize int
}

func NewCatalogService(repo ports.MapRepository, cursors ports.Cache, metrics ports.Metrics, maxPageSize int) *CatalogService {
	if cursors == nil {
		cursors = ports.NoopCache{}
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &CatalogService{repo: repo, cursors: cursors, metrics: metrics, maxPageSize: maxPageSize}
}

func (s *CatalogService) Page(ctx context.Context, req domain.PageRequest) (*domain.Page, error) {
	if req.PageSize <= 0 {
		return nil, domain.ErrInvalidPageSize
	}
	if s.maxPageSize > 0 && req.PageSize > s.maxPageSize {
		return nil, fmt.Errorf("%w (%d)", domain.ErrPageSizeTooLarge, s.maxPageSize)
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	sort := req.Sort
	if sort == "" {
		sort = domain.SortRecency
	}
	if sort != domain.SortRecency && sort != domain.SortPopularity {
		return nil, domain.ErrInvalidSort
	}
	filters, err := req.Filters.Normalize()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	key := boundaryKey(filters, sort, req.PageSize)

	var (
		items   []*domain.Map
		total   int
		hasMore bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx, filters)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	g.Go(func() error {
		after, ok, err := s.locate(gctx, key, filters, sort, page, req.PageSize, req.Cursor)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		// One item past the page tells whether a next page exists.
		items, err = s.repo.Query(gctx, ports.MapQuery{
			Filters: filters,
			Sort:    sort,
			After:   after,
			Limit:   req.PageSize + 1,
		})
		if len(items) > req.PageSize {
			items, hasMore = items[:req.PageSize], true
		}
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"sort":      sort,
			"page":      page,
			"page_size": req.PageSize,
			"filters":   filters.Fingerprint(),
		}).Warn("catalog page failed")
		return nil, err
	}

	if items == nil {
		items = []*domain.Map{}
	}
	result := &domain.Page{
		Items:      items,
		Total:      total,
		TotalPages: domain.TotalPages(total, req.PageSize),
		Page:       page,
		PageSize:   req.PageSize,
	}
	if len(items) == req.PageSize {
		boundary := domain.CursorAfter(items[len(items)-1], sort)
		if req.Cursor == "" {
			s.putBoundary(key, page, boundary)
		}
		if hasMore {
			result.NextCursor = EncodeCursor(boundary)
		}
	}

	s.metrics.ObservePage(string(sort), time.Since(start))
	return result, nil
}

// locate returns the cursor the requested page starts after. ok is false
// when the page lies past the end of the result set.
func (s *CatalogService) locate(ctx context.Context, key string, filters domain.FilterSet, sort domain.SortKey, page, pageSize int, token string) (*domain.Cursor, bool, error) {
	if token != "" {
		c, err := DecodeCursor(token, sort)
		if err != nil {
			return nil, false, err
		}
		s.metrics.IncCursorSource(cursorSourceToken)
		return c, true, nil
	}
	if page == 1 {
		s.metrics.IncCursorSource(cursorSourceNone)
		return nil, true, nil
	}
	if c, ok := s.getBoundary(key, page-1, sort); ok {
		s.metrics.IncCursorSource(cursorSourceCache)
		return c, true, nil
	}

	s.metrics.IncCursorSource(cursorSourceScan)
	skip := (page - 1) * pageSize
	scanned, err := s.repo.Query(ctx, ports.MapQuery{Filters: filters, Sort: sort, Limit: skip})
	if err != nil {
		return nil, false, err
	}
	for k := 1; k*pageSize <= len(scanned); k++ {
		s.putBoundary(key, k, domain.CursorAfter(scanned[k*pageSize-1], sort))
	}
	if len(scanned) < skip {
		return nil, false, nil
	}
	return domain.CursorAfter(scanned[skip-1], sort), true, nil
}

func boundaryKey(filters domain.FilterSet, sort domain.SortKey, pageSize int) string {
	return fmt.Sprintf("cursor|%s|%d|%s", sort, pageSize, filters.Fingerprint())
}

func (s *CatalogService) getBoundary(key string, page int, sort domain.SortKey) (*domain.Cursor, bool) {
	raw, ok := s.cursors.Get(fmt.Sprintf("%s|%d", key, page))
	if !ok {
		return nil, false
	}
	c, err := DecodeCursor(string(raw), sort)
	if err != nil {
		return nil, false
	}
	return c, true
}

func (s *CatalogService) putBoundary(key string, page int, c *domain.Cursor) {
	s.cursors.Set(fmt.Sprintf("%s|%d", key, page), []byte(EncodeCursor(c)))
}

// ============================================================================
// Views
// ============================================================================

// Explore lists finished, original maps of purchasable tiers. An explicit
// tier filter replaces the purchasable-tier restriction.
func (s *CatalogService) Explore(ctx context.Context, req domain.PageRequest) (*domain.Page, error) {
	filters := append(domain.FilterSet{}, req.Filters...)
	filters = append(filters,
		domain.Eq(domain.FieldStatus, string(domain.MapStatusSuccess)),
		domain.Eq(domain.FieldPurchasedCopy, "false"),
	)
	if !req.Filters.Has(domain.FieldTier) {
		tiers := domain.PurchasableTiers()
		values := make([]string, 0, len(tiers))
		for _, t := range tiers {
			values = append(values, string(t))
		}
		filters = append(filters, domain.In(domain.FieldTier, values...))
	}
	req.Filters = filters
	return s.Page(ctx, req)
}

// MyMaps lists every map owned by userID, purchased copies included.
func (s *CatalogService) MyMaps(ctx context.Context, userID string, req domain.PageRequest) (*domain.Page, error) {
	if userID == "" {
		return nil, domain.ErrMissingUserID
	}
	req.Filters = append(append(domain.FilterSet{}, req.Filters...), domain.Eq(domain.FieldOwner, userID))
	return s.Page(ctx, req)
}

// Purchasable lists finished maps buyerID could buy: not of the smallest
// tier and not owned by the buyer.
func (s *CatalogService) Purchasable(ctx context.Context, buyerID string, req domain.PageRequest) (*domain.Page, error) {
	filters := append(domain.FilterSet{}, req.Filters...)
	filters = append(filters,
		domain.Ne(domain.FieldTier, string(domain.TierSmall)),
		domain.Eq(domain.FieldStatus, string(domain.MapStatusSuccess)),
	)
	if buyerID != "" {
		filters = append(filters, domain.Ne(domain.FieldOwner, buyerID))
	}
	req.Filters = filters
	return s.Page(ctx, req)
}
