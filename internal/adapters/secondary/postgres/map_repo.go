package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"map-catalog-service/internal/core/domain"
	ports "map-catalog-service/internal/core/ports/output"
)

type mapRepo struct {
	db *Connector
}

// NewMapRepository creates a map repository on top of the connector's pool.
func NewMapRepository(db *Connector) ports.MapRepository {
	return &mapRepo{db: db}
}

const mapColumns = `uid, created_at, updated_at, owner, email, tier, status, ticket,
		title, subtitle, location, design, image_url, votes, voters,
		purchased_from, is_purchased_copy, archived_at`

var filterColumns = map[domain.FilterField]string{
	domain.FieldTier:          "tier",
	domain.FieldStyle:         "style",
	domain.FieldComposition:   "composition",
	domain.FieldOwner:         "owner",
	domain.FieldStatus:        "status",
	domain.FieldPurchasedCopy: "is_purchased_copy",
}

// ============================================================================
// Reads
// ============================================================================

func (r *mapRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Map, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM maps WHERE uid = $1`, mapColumns)
	m, err := scanMap(pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMapNotFound
		}
		return nil, classify("get map by id", err)
	}
	return m, nil
}

func (r *mapRepo) GetByTicket(ctx context.Context, ticket string) (*domain.Map, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM maps WHERE ticket = $1`, mapColumns)
	m, err := scanMap(pool.QueryRow(ctx, query, ticket))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMapNotFound
		}
		return nil, classify("get map by ticket", err)
	}
	return m, nil
}

func (r *mapRepo) Query(ctx context.Context, q ports.MapQuery) ([]*domain.Map, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	where, args, err := buildWhere(q.Filters, q.After, q.Sort)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM maps
		WHERE %s
		ORDER BY %s
		LIMIT $%d
	`, mapColumns, where, orderBy(q.Sort), len(args)+1)
	args = append(args, q.Limit)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("query maps", err)
	}
	defer rows.Close()

	var maps []*domain.Map
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, classify("scan map row", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate map rows", err)
	}
	return maps, nil
}

func (r *mapRepo) Count(ctx context.Context, filters domain.FilterSet) (int, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}
	where, args, err := buildWhere(filters, nil, domain.SortRecency)
	if err != nil {
		return 0, err
	}
	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM maps WHERE "+where, args...).Scan(&total); err != nil {
		return 0, classify("count maps", err)
	}
	return total, nil
}

// buildWhere renders the filter conjunction, the archive exclusion and the
// keyset boundary as a WHERE clause with positional arguments.
func buildWhere(filters domain.FilterSet, after *domain.Cursor, sort domain.SortKey) (string, []any, error) {
	conditions := []string{"archived_at IS NULL"}
	args := []any{}
	argPos := 1

	for _, p := range filters {
		if p.Field == domain.FieldText {
			if p.Op != domain.OpContains || len(p.Values) != 1 {
				return "", nil, fmt.Errorf("%w: %s on %s", domain.ErrUnsupportedOperator, p.Op, p.Field)
			}
			conditions = append(conditions, fmt.Sprintf(
				"(title ILIKE $%[1]d OR subtitle ILIKE $%[1]d OR location->>'name' ILIKE $%[1]d OR location->>'display_name' ILIKE $%[1]d)",
				argPos))
			args = append(args, "%"+likeEscaper.Replace(p.Values[0])+"%")
			argPos++
			continue
		}
		col, ok := filterColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFilter, p.Field)
		}
		values := make([]any, 0, len(p.Values))
		for _, v := range p.Values {
			if p.Field == domain.FieldPurchasedCopy {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return "", nil, fmt.Errorf("%w: is_purchased_copy %q", domain.ErrInvalidFilterValue, v)
				}
				values = append(values, b)
				continue
			}
			values = append(values, v)
		}
		switch p.Op {
		case domain.OpEq:
			conditions = append(conditions, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, values[0])
		case domain.OpNe:
			conditions = append(conditions, fmt.Sprintf("%s <> $%d", col, argPos))
			args = append(args, values[0])
		case domain.OpIn:
			conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", col, argPos))
			args = append(args, p.Values)
		default:
			return "", nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedOperator, p.Op)
		}
		argPos++
	}

	if after != nil {
		if sort == domain.SortPopularity {
			conditions = append(conditions, fmt.Sprintf("(votes, created_at, uid) < ($%d, $%d, $%d)", argPos, argPos+1, argPos+2))
			args = append(args, after.Votes, after.CreatedAt, after.UID)
		} else {
			conditions = append(conditions, fmt.Sprintf("(created_at, uid) < ($%d, $%d)", argPos, argPos+1))
			args = append(args, after.CreatedAt, after.UID)
		}
	}

	return strings.Join(conditions, " AND "), args, nil
}

// likeEscaper escapes ILIKE wildcards; backslash is the default escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func orderBy(sort domain.SortKey) string {
	if sort == domain.SortPopularity {
		return "votes DESC, created_at DESC, uid DESC"
	}
	return "created_at DESC, uid DESC"
}

// ============================================================================
// Writes
// ============================================================================

func (r *mapRepo) Create(ctx context.Context, m *domain.Map) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	location, err := json.Marshal(m.Location)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	design, err := json.Marshal(m.Design)
	if err != nil {
		return fmt.Errorf("encode design: %w", err)
	}
	voters := m.Voters
	if voters == nil {
		voters = []string{}
	}

	query := `
		INSERT INTO maps (uid, created_at, updated_at, owner, email, tier, status, ticket,
			title, subtitle, location, style, composition, design, image_url, votes, voters,
			purchased_from, is_purchased_copy, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err = pool.Exec(ctx, query,
		m.UID,
		m.CreatedAt,
		m.UpdatedAt,
		m.Owner,
		m.Email,
		string(m.Tier),
		string(m.Status),
		m.Ticket,
		m.Title,
		m.Subtitle,
		location,
		m.Design.Style,
		m.Design.Composition,
		design,
		m.ImageURL,
		len(voters),
		voters,
		m.PurchasedFrom,
		m.IsPurchasedCopy,
		m.ArchivedAt,
	)
	if err != nil {
		return classify("insert map", err)
	}
	return nil
}

func (r *mapRepo) Archive(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	result, err := pool.Exec(ctx, `
		UPDATE maps SET archived_at = NOW(), updated_at = NOW()
		WHERE uid = $1 AND archived_at IS NULL
	`, id)
	if err != nil {
		return classify("archive map", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrMapNotFound
	}
	return nil
}

func (r *mapRepo) Delete(ctx context.Context, id uuid.UUID) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	result, err := pool.Exec(ctx, `DELETE FROM maps WHERE uid = $1`, id)
	if err != nil {
		return classify("delete map", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrMapNotFound
	}
	return nil
}

// ============================================================================
// Votes
// ============================================================================

// The voter guard lives in the WHERE clause, so a concurrent duplicate vote
// or unvote matches no row instead of double counting.
const (
	addVoterSQL = `
		UPDATE maps
		SET voters = array_append(voters, $2::text),
		    votes = cardinality(array_append(voters, $2::text)),
		    updated_at = NOW()
		WHERE uid = $1 AND archived_at IS NULL AND NOT ($2::text = ANY(voters))
		RETURNING votes`

	removeVoterSQL = `
		UPDATE maps
		SET voters = array_remove(voters, $2::text),
		    votes = GREATEST(cardinality(array_remove(voters, $2::text)), 0),
		    updated_at = NOW()
		WHERE uid = $1 AND archived_at IS NULL AND $2::text = ANY(voters)
		RETURNING votes`
)

func (r *mapRepo) AddVoter(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}
	var votes int
	err = pool.QueryRow(ctx, addVoterSQL, id, userID).Scan(&votes)
	if err == nil {
		return votes, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, classify("add voter", err)
	}
	return 0, r.explainVoteMiss(ctx, id, userID, true)
}

func (r *mapRepo) RemoveVoter(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}
	var votes int
	err = pool.QueryRow(ctx, removeVoterSQL, id, userID).Scan(&votes)
	if err == nil {
		return votes, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, classify("remove voter", err)
	}
	return 0, r.explainVoteMiss(ctx, id, userID, false)
}

// explainVoteMiss tells apart the reasons a conditional vote update matched
// no row.
func (r *mapRepo) explainVoteMiss(ctx context.Context, id uuid.UUID, userID string, adding bool) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	var voted bool
	err = pool.QueryRow(ctx, `
		SELECT $2::text = ANY(voters) FROM maps WHERE uid = $1 AND archived_at IS NULL
	`, id, userID).Scan(&voted)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrMapNotFound
	case err != nil:
		return classify("check voter", err)
	case adding && voted:
		return domain.ErrAlreadyVoted
	case !adding && !voted:
		return domain.ErrNotVoted
	}
	// The voter set changed between the two statements.
	return domain.ErrStoreConflict
}

// ============================================================================
// Scanning
// ============================================================================

func scanMap(row pgx.Row) (*domain.Map, error) {
	var (
		m        domain.Map
		tier     string
		status   string
		location []byte
		design   []byte
	)
	err := row.Scan(
		&m.UID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Owner,
		&m.Email,
		&tier,
		&status,
		&m.Ticket,
		&m.Title,
		&m.Subtitle,
		&location,
		&design,
		&m.ImageURL,
		&m.Votes,
		&m.Voters,
		&m.PurchasedFrom,
		&m.IsPurchasedCopy,
		&m.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Tier = domain.Tier(tier)
	m.Status = domain.MapStatus(status)
	if len(location) > 0 {
		if err := json.Unmarshal(location, &m.Location); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
	}
	if len(design) > 0 {
		if err := json.Unmarshal(design, &m.Design); err != nil {
			return nil, fmt.Errorf("decode design: %w", err)
		}
	}
	if m.Voters == nil {
		m.Voters = []string{}
	}
	return &m, nil
}
