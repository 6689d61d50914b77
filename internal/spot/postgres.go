package spot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
)

// DB is the subset of pgxpool.Pool the Postgres repository needs.
// Satisfied by *pgxpool.Pool, pgx.Tx, and pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Repository on PostgreSQL with PostGIS. Coordinates
// are stored in a geography(Point,4326) column; proximity filtering uses
// ST_DWithin and nearest-first ordering uses the KNN operator so the GiST
// index serves both.
type Postgres struct {
	db DB
}

// NewPostgres creates a Postgres repository on the given connection.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

const findNearSQL = `
SELECT id, name, ST_X(geom::geometry), ST_Y(geom::geometry)
FROM spots
WHERE ST_DWithin(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
ORDER BY geom::geometry <-> ST_SetSRID(ST_MakePoint($1, $2), 4326)::geometry
LIMIT $4`

// FindNear returns summaries within radiusM meters of (lng, lat),
// nearest-first, capped at limit.
func (p *Postgres) FindNear(ctx context.Context, lng, lat, radiusM float64, limit int) ([]Summary, error) {
	rows, err := p.db.Query(ctx, findNearSQL, lng, lat, radiusM, limit)
	if err != nil {
		return nil, eris.Wrap(err, "spot: find near")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Coordinates[0], &s.Coordinates[1]); err != nil {
			return nil, eris.Wrap(err, "spot: scan near row")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "spot: iterate near rows")
	}
	return out, nil
}

const insertSQL = `
INSERT INTO spots (
	name, geom, prefecture, address, spot_type,
	has_roof, has_power, price_per_night, restrictions, amenities,
	notes, submitted_by
) VALUES (
	$1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5, $6,
	$7, $8, $9, $10, $11,
	$12, $13
)
RETURNING id, created_at, updated_at`

// Insert persists a candidate and returns the stored spot.
func (p *Postgres) Insert(ctx context.Context, c *Candidate) (*Spot, error) {
	s := &Spot{
		Name:          c.Name,
		Coordinates:   c.Coordinates,
		Prefecture:    c.Prefecture,
		Address:       c.Address,
		SpotType:      c.SpotType,
		HasRoof:       c.HasRoof,
		HasPower:      c.HasPower,
		PricePerNight: c.PricePerNight,
		Restrictions:  c.Restrictions,
		Amenities:     c.Amenities,
		Notes:         c.Notes,
		SubmittedBy:   c.SubmittedBy,
	}
	err := p.db.QueryRow(ctx, insertSQL,
		c.Name, c.Lng(), c.Lat(), c.Prefecture, c.Address, string(c.SpotType),
		c.HasRoof, c.HasPower, c.PricePerNight, c.Restrictions, c.Amenities,
		c.Notes, c.SubmittedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "spot: insert")
	}
	return s, nil
}

const spotColumns = `
	id, name, ST_X(geom::geometry), ST_Y(geom::geometry), prefecture, address, spot_type,
	has_roof, has_power, price_per_night, restrictions, amenities,
	notes, submitted_by, created_at, updated_at`

func scanSpot(row pgx.Row) (*Spot, error) {
	var s Spot
	var spotType string
	err := row.Scan(
		&s.ID, &s.Name, &s.Coordinates[0], &s.Coordinates[1], &s.Prefecture, &s.Address, &spotType,
		&s.HasRoof, &s.HasPower, &s.PricePerNight, &s.Restrictions, &s.Amenities,
		&s.Notes, &s.SubmittedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SpotType = Type(spotType)
	return &s, nil
}

// Get returns a spot by ID, or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*Spot, error) {
	row := p.db.QueryRow(ctx, `SELECT`+spotColumns+` FROM spots WHERE id = $1`, id)
	s, err := scanSpot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "spot: get")
	}
	return s, nil
}

// List returns spots matching the filter plus the total match count.
func (p *Postgres) List(ctx context.Context, f ListFilter) ([]Spot, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if f.Prefecture != "" {
		args = append(args, f.Prefecture)
		where = append(where, fmt.Sprintf("prefecture = $%d", len(args)))
	}
	if f.SpotType != "" {
		args = append(args, string(f.SpotType))
		where = append(where, fmt.Sprintf("spot_type = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM spots WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "spot: count")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	sql := fmt.Sprintf(`SELECT%s FROM spots WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		spotColumns, cond, len(args)-1, len(args))

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "spot: list")
	}
	defer rows.Close()

	var out []Spot
	for rows.Next() {
		s, err := scanSpot(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "spot: scan list row")
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, eris.Wrap(err, "spot: iterate list rows")
	}
	return out, total, nil
}

const updateSQL = `
UPDATE spots SET
	name = $2,
	geom = ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography,
	prefecture = $5, address = $6, spot_type = $7,
	has_roof = $8, has_power = $9, price_per_night = $10,
	restrictions = $11, amenities = $12, notes = $13,
	updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at, submitted_by`

// Update replaces the stored fields of an existing spot. SubmittedBy is
// preserved from the original row; the updater does not take authorship.
func (p *Postgres) Update(ctx context.Context, id uuid.UUID, c *Candidate) (*Spot, error) {
	s := &Spot{
		ID:            id,
		Name:          c.Name,
		Coordinates:   c.Coordinates,
		Prefecture:    c.Prefecture,
		Address:       c.Address,
		SpotType:      c.SpotType,
		HasRoof:       c.HasRoof,
		HasPower:      c.HasPower,
		PricePerNight: c.PricePerNight,
		Restrictions:  c.Restrictions,
		Amenities:     c.Amenities,
		Notes:         c.Notes,
	}
	err := p.db.QueryRow(ctx, updateSQL,
		id, c.Name, c.Lng(), c.Lat(), c.Prefecture, c.Address, string(c.SpotType),
		c.HasRoof, c.HasPower, c.PricePerNight, c.Restrictions, c.Amenities, c.Notes,
	).Scan(&s.CreatedAt, &s.UpdatedAt, &s.SubmittedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "spot: update")
	}
	return s, nil
}

// Delete removes a spot by ID, or returns ErrNotFound.
func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM spots WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "spot: delete")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
