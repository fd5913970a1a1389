// Package store: read access to the property-assessment tables (PostgreSQL or SQLite)
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"property-api/internal/config"
	"property-api/internal/logger"
)

// Store: relational store adapter; holds the pool and the driver name used for placeholder rebinding
type Store struct {
	db     *sql.DB
	driver string
}

func AttachDB(db *sql.DB, driver string) *Store { return &Store{db: db, driver: driver} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Driver() string { return s.driver }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Rebind: rewrite '?' placeholders as $1..$n for PostgreSQL; other drivers get the query unchanged.
// Constraint: queries must not contain a literal '?'.
func Rebind(driver, query string) string {
	if driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) q(query string) string { return Rebind(s.driver, query) }

const propertyColumns = `p.id, COALESCE(p.house_number, ''), p.street_name, p.garage, p.latitude, p.longitude`

func scanProperty(sc interface{ Scan(...any) error }, p *Property) error {
	return sc.Scan(&p.ID, &p.HouseNumber, &p.StreetName, &p.Garage, &p.Latitude, &p.Longitude)
}

func (s *Store) queryProperties(ctx context.Context, query string, args ...any) ([]Property, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()
	out := []Property{}
	for rows.Next() {
		var p Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return out, nil
}

// ListProperties: every property ordered by id
func (s *Store) ListProperties(ctx context.Context) ([]Property, error) {
	return s.queryProperties(ctx, `SELECT `+propertyColumns+` FROM properties p ORDER BY p.id`)
}

// ListPropertiesByNeighborhood: properties whose neighbourhood name equals name exactly
func (s *Store) ListPropertiesByNeighborhood(ctx context.Context, name string) ([]Property, error) {
	logger.L().Debug("db_list_by_neighborhood", "name", name)
	return s.queryProperties(ctx, `SELECT `+propertyColumns+`
        FROM properties p
        JOIN neighborhoods n ON n.id = p.neighborhood_id
        WHERE n.name = ?
        ORDER BY p.id`, name)
}

// GetProperty: one property with group names and sub-assessments; nil when the id does not exist
func (s *Store) GetProperty(ctx context.Context, id int64) (*PropertyRecord, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+propertyColumns+`,
            n.name, w.name,
            r.id, r.assessed_value,
            c.id, c.assessed_value, c.business_type
        FROM properties p
        LEFT JOIN neighborhoods n ON n.id = p.neighborhood_id
        LEFT JOIN wards w ON w.id = p.ward_id
        LEFT JOIN residential_properties r ON r.property_id = p.id
        LEFT JOIN commercial_properties c ON c.property_id = p.id
        WHERE p.id = ?`), id)
	var (
		rec          PropertyRecord
		nName, wName sql.NullString
		rID, cID     sql.NullInt64
		rVal, cVal   sql.NullFloat64
		cType        sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.HouseNumber, &rec.StreetName, &rec.Garage, &rec.Latitude, &rec.Longitude,
		&nName, &wName, &rID, &rVal, &cID, &cVal, &cType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.L().Debug("db_property_miss", "id", id)
			return nil, nil
		}
		return nil, fmt.Errorf("get property %d: %w", id, err)
	}
	if nName.Valid {
		rec.Neighborhood = &nName.String
	}
	if wName.Valid {
		rec.Ward = &wName.String
	}
	if rID.Valid {
		rec.Residential = &ResidentialAssessment{ID: rID.Int64, PropertyID: rec.ID, AssessedValue: rVal.Float64}
	}
	if cID.Valid {
		rec.Commercial = &CommercialAssessment{ID: cID.Int64, PropertyID: rec.ID, AssessedValue: cVal.Float64, BusinessType: cType.String}
	}
	return &rec, nil
}

func (s *Store) queryResidential(ctx context.Context, query string, args ...any) ([]ResidentialAssessment, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query residential: %w", err)
	}
	defer rows.Close()
	out := []ResidentialAssessment{}
	for rows.Next() {
		var a ResidentialAssessment
		if err := rows.Scan(&a.ID, &a.PropertyID, &a.AssessedValue); err != nil {
			return nil, fmt.Errorf("scan residential: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate residential: %w", err)
	}
	return out, nil
}

func (s *Store) queryCommercial(ctx context.Context, query string, args ...any) ([]CommercialAssessment, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query commercial: %w", err)
	}
	defer rows.Close()
	out := []CommercialAssessment{}
	for rows.Next() {
		var a CommercialAssessment
		if err := rows.Scan(&a.ID, &a.PropertyID, &a.AssessedValue, &a.BusinessType); err != nil {
			return nil, fmt.Errorf("scan commercial: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commercial: %w", err)
	}
	return out, nil
}

func (s *Store) ListResidential(ctx context.Context) ([]ResidentialAssessment, error) {
	return s.queryResidential(ctx, `SELECT id, property_id, assessed_value FROM residential_properties ORDER BY id`)
}

func (s *Store) ListCommercial(ctx context.Context) ([]CommercialAssessment, error) {
	return s.queryCommercial(ctx, `SELECT id, property_id, assessed_value, business_type FROM commercial_properties ORDER BY id`)
}

// ListResidentialAbove: residential rows with assessed_value strictly greater than threshold
func (s *Store) ListResidentialAbove(ctx context.Context, threshold float64) ([]ResidentialAssessment, error) {
	return s.queryResidential(ctx, `SELECT id, property_id, assessed_value FROM residential_properties
        WHERE assessed_value > ? ORDER BY id`, threshold)
}

// ListCommercialAbove: commercial rows with assessed_value strictly greater than threshold
func (s *Store) ListCommercialAbove(ctx context.Context, threshold float64) ([]CommercialAssessment, error) {
	return s.queryCommercial(ctx, `SELECT id, property_id, assessed_value, business_type FROM commercial_properties
        WHERE assessed_value > ? ORDER BY id`, threshold)
}

// Aggregate: fn(assessed_value) of one assessment kind grouped by the joined group name.
// Properties without a group are excluded; groups with no rows of that kind are absent from the map.
func (s *Store) Aggregate(ctx context.Context, kind Kind, fn AggFunc, group Grouping) (map[string]float64, error) {
	if !kind.Valid() || !fn.Valid() || !group.Valid() {
		return nil, fmt.Errorf("aggregate: bad arguments kind=%q fn=%q group=%q", kind, fn, group)
	}
	query := `SELECT g.name, ` + string(fn) + `(a.assessed_value)
        FROM ` + kind.table() + ` a
        JOIN properties p ON p.id = a.property_id
        JOIN ` + group.table() + ` g ON g.id = p.` + group.column() + `
        GROUP BY g.name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s %s by %s: %w", fn, kind, group, err)
	}
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var (
			name string
			v    sql.NullFloat64
		)
		if err := rows.Scan(&name, &v); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out[name] = v.Float64
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate: %w", err)
	}
	logger.L().Debug("db_aggregate", "kind", kind, "fn", fn, "group", group, "groups", len(out))
	return out, nil
}
