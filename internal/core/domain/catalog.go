package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Filters
// ============================================================================

type FilterField string

const (
	FieldTier          FilterField = "tier"
	FieldStyle         FilterField = "style"
	FieldComposition   FilterField = "composition"
	FieldOwner         FilterField = "owner"
	FieldStatus        FilterField = "status"
	FieldPurchasedCopy FilterField = "is_purchased_copy"
	// FieldText matches title, subtitle and location names.
	FieldText          FilterField = "text"
)

type FilterOp string

const (
	OpEq       FilterOp = "eq"
	OpIn       FilterOp = "in"
	OpNe       FilterOp = "ne"
	// OpContains is a case-insensitive substring match.
	OpContains FilterOp = "contains"
)

// allowedOps is the filter allow-list: a field absent here cannot be
// filtered on at all.
var allowedOps = map[FilterField][]FilterOp{
	FieldTier:          {OpEq, OpIn, OpNe},
	FieldStyle:         {OpEq},
	FieldComposition:   {OpEq},
	FieldOwner:         {OpEq, OpNe},
	FieldStatus:        {OpEq},
	FieldPurchasedCopy: {OpEq},
	FieldText:          {OpContains},
}

type Predicate struct {
	Field  FilterField
	Op     FilterOp
	Values []string
}

func Eq(field FilterField, value string) Predicate {
	return Predicate{Field: field, Op: OpEq, Values: []string{value}}
}

func Ne(field FilterField, value string) Predicate {
	return Predicate{Field: field, Op: OpNe, Values: []string{value}}
}

func In(field FilterField, values ...string) Predicate {
	return Predicate{Field: field, Op: OpIn, Values: values}
}

// FilterSet is a conjunction of predicates.
type FilterSet []Predicate

// Normalize validates every predicate against the allow-list and returns a
// copy with canonical values.
func (fs FilterSet) Normalize() (FilterSet, error) {
	out := make(FilterSet, 0, len(fs))
	for _, p := range fs {
		ops, ok := allowedOps[p.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFilter, p.Field)
		}
		if !containsOp(ops, p.Op) {
			return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, p.Op, p.Field)
		}
		if len(p.Values) == 0 || (p.Op != OpIn && len(p.Values) != 1) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilterValue, p.Field)
		}
		values := make([]string, 0, len(p.Values))
		for _, v := range p.Values {
			nv, err := normalizeValue(p.Field, v)
			if err != nil {
				return nil, err
			}
			values = append(values, nv)
		}
		out = append(out, Predicate{Field: p.Field, Op: p.Op, Values: values})
	}
	return out, nil
}

// Has reports whether any predicate targets field.
func (fs FilterSet) Has(field FilterField) bool {
	for _, p := range fs {
		if p.Field == field {
			return true
		}
	}
	return false
}

// Fingerprint is a stable key for the filter set, independent of predicate
// order.
func (fs FilterSet) Fingerprint() string {
	parts := make([]string, 0, len(fs))
	for _, p := range fs {
		values := append([]string(nil), p.Values...)
		sort.Strings(values)
		parts = append(parts, fmt.Sprintf("%s:%s:%s", p.Field, p.Op, strings.Join(values, ",")))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// Matches reports whether m satisfies every predicate. Values must already
// be normalized.
func (fs FilterSet) Matches(m *Map) bool {
	for _, p := range fs {
		if p.Op == OpContains {
			if !containsText(m, p.Values[0]) {
				return false
			}
			continue
		}
		v := fieldValue(m, p.Field)
		hit := false
		for _, want := range p.Values {
			if v == want {
				hit = true
				break
			}
		}
		if hit == (p.Op == OpNe) {
			return false
		}
	}
	return true
}

func fieldValue(m *Map, field FilterField) string {
	switch field {
	case FieldTier:
		return string(m.Tier)
	case FieldStyle:
		return m.Design.Style
	case FieldComposition:
		return m.Design.Composition
	case FieldOwner:
		return m.Owner
	case FieldStatus:
		return string(m.Status)
	case FieldPurchasedCopy:
		return strconv.FormatBool(m.IsPurchasedCopy)
	}
	return ""
}

func containsText(m *Map, text string) bool {
	text = strings.ToLower(text)
	for _, v := range []string{m.Title, m.Subtitle, m.Location.Name, m.Location.DisplayName} {
		if strings.Contains(strings.ToLower(v), text) {
			return true
		}
	}
	return false
}

func containsOp(ops []FilterOp, op FilterOp) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func normalizeValue(field FilterField, v string) (string, error) {
	v = strings.TrimSpace(v)
	switch field {
	case FieldTier:
		t, err := ParseTier(v)
		if err != nil {
			return "", fmt.Errorf("%w: tier %q", ErrInvalidFilterValue, v)
		}
		return string(t), nil
	case FieldStatus:
		s := MapStatus(strings.ToLower(v))
		if !s.IsValid() {
			return "", fmt.Errorf("%w: status %q", ErrInvalidFilterValue, v)
		}
		return string(s), nil
	case FieldPurchasedCopy:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", fmt.Errorf("%w: is_purchased_copy %q", ErrInvalidFilterValue, v)
		}
		return strconv.FormatBool(b), nil
	default:
		if v == "" {
			return "", fmt.Errorf("%w: empty %s", ErrInvalidFilterValue, field)
		}
		return v, nil
	}
}

// ============================================================================
// Sorting and cursors
// ============================================================================

type SortKey string

const (
	SortRecency    SortKey = "recency"
	SortPopularity SortKey = "popularity"
)

// ParseSortKey maps request values to a sort key. "votes" is accepted as an
// alias of popularity; empty means recency.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recency", "recent", "created_at":
		return SortRecency, nil
	case "popularity", "popular", "votes":
		return SortPopularity, nil
	default:
		return "", ErrInvalidSort
	}
}

// Cursor is the sort key tuple of the last item of a page. The next page
// starts strictly after it in the sort order.
type Cursor struct {
	Sort      SortKey
	Votes     int
	CreatedAt time.Time
	UID       uuid.UUID
}

func CursorAfter(m *Map, sort SortKey) *Cursor {
	return &Cursor{Sort: sort, Votes: m.Votes, CreatedAt: m.CreatedAt, UID: m.UID}
}

// Less reports whether a sorts strictly before b under key. Both sorts are
// descending and end in uid so the order is total.
func Less(a, b *Map, key SortKey) bool {
	if key == SortPopularity && a.Votes != b.Votes {
		return a.Votes > b.Votes
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.UID.String() > b.UID.String()
}

// After reports whether m sorts strictly after the cursor.
func (c *Cursor) After(m *Map) bool {
	boundary := &Map{Votes: c.Votes, CreatedAt: c.CreatedAt, UID: c.UID}
	return Less(boundary, m, c.Sort)
}

// ============================================================================
// Pages
// ============================================================================

type PageRequest struct {
	Filters  FilterSet
	Sort     SortKey
	Page     int
	PageSize int
	// Cursor, when set, is the boundary returned with the previous page and
	// takes precedence over the page number for locating the start.
	Cursor string
}

type Page struct {
	Items      []*Map `json:"items"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
