// Package ingest: bulk import of the assessment CSV into the relational store
package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"property-api/internal/logger"
	"property-api/internal/metrics"
	"property-api/internal/store"
)

const (
	colHouseNumber  = "House Number"
	colStreetName   = "Street Name"
	colGarage       = "Garage"
	colLatitude     = "Latitude"
	colLongitude    = "Longitude"
	colNeighborhood = "Neighbourhood"
	colWard         = "Ward"
	colClass        = "Assessment Class 1"
	colValue        = "Assessed Value"
	colBusinessType = "Business Type"

	DefaultBatchSize    = 100
	DefaultBusinessType = "Not Specified"
)

var requiredColumns = []string{colStreetName, colGarage, colLatitude, colLongitude, colNeighborhood, colWard, colClass, colValue}

// Summary: counters reported after an import run
type Summary struct {
	Processed     int
	Skipped       int
	Residential   int
	Commercial    int
	Untyped       int
	Neighborhoods int
	Wards         int
}

// row: one parsed CSV record
type row struct {
	HouseNumber  string
	StreetName   string
	Garage       bool
	Latitude     float64
	Longitude    float64
	Neighborhood string
	Ward         string
	Kind         store.Kind
	Value        float64
	BusinessType string
}

// Loader: imports rows in batches; group names are cached across batches
type Loader struct {
	db            *sql.DB
	driver        string
	batchSize     int
	log           *slog.Logger
	neighborhoods map[string]int64
	wards         map[string]int64
}

func NewLoader(db *sql.DB, driver string, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		db:            db,
		driver:        driver,
		batchSize:     batchSize,
		log:           logger.L(),
		neighborhoods: map[string]int64{},
		wards:         map[string]int64{},
	}
}

// ImportFile: open path and Load it
func (l *Loader) ImportFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, f)
}

// Load: read the CSV from r and write properties, groups and assessments.
// A new neighbourhood or ward commits the open batch immediately; otherwise the batch commits every batchSize rows.
// Rows with unparseable numbers are skipped and counted.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Summary, error) {
	var sum Summary
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		return sum, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return sum, err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()
	commit := func() error {
		if err := tx.Commit(); err != nil {
			tx = nil
			return fmt.Errorf("commit: %w", err)
		}
		tx, err = l.db.BeginTx(ctx, nil)
		if err != nil {
			tx = nil
			return fmt.Errorf("begin: %w", err)
		}
		return nil
	}

	line := 1
	pending := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				l.log.Warn("import_row_skip", "line", line, "err", err)
				sum.Skipped++
				metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
				continue
			}
			return sum, fmt.Errorf("read line %d: %w", line, err)
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rw, err := parseRow(cols, rec)
		if err != nil {
			l.log.Warn("import_row_skip", "line", line, "err", err)
			sum.Skipped++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		nID, created, err := l.groupID(ctx, tx, store.ByNeighborhood, rw.Neighborhood)
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			sum.Neighborhoods++
			if err := commit(); err != nil {
				return sum, err
			}
			pending = 0
		}
		wID, created, err := l.groupID(ctx, tx, store.ByWard, rw.Ward)
		if err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			sum.Wards++
			if err := commit(); err != nil {
				return sum, err
			}
			pending = 0
		}

		if err := l.insertProperty(ctx, tx, rw, nID, wID); err != nil {
			return sum, fmt.Errorf("line %d: %w", line, err)
		}
		switch rw.Kind {
		case store.Residential:
			sum.Residential++
		case store.Commercial:
			sum.Commercial++
		default:
			sum.Untyped++
		}
		metrics.ImportRowsTotal.WithLabelValues(kindLabel(rw.Kind)).Inc()
		sum.Processed++
		pending++
		if pending >= l.batchSize {
			if err := commit(); err != nil {
				return sum, err
			}
			pending = 0
			l.log.Info("import_progress", "count", sum.Processed)
		}
	}
	err = tx.Commit()
	tx = nil
	if err != nil {
		return sum, fmt.Errorf("commit: %w", err)
	}
	l.log.Info("import_done", "processed", sum.Processed, "skipped", sum.Skipped,
		"residential", sum.Residential, "commercial", sum.Commercial, "untyped", sum.Untyped,
		"neighborhoods", sum.Neighborhoods, "wards", sum.Wards)
	return sum, nil
}

func kindLabel(k store.Kind) string {
	if k == "" {
		return "untyped"
	}
	return string(k)
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[h] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(cols map[string]int, rec []string, name string) (string, bool) {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[i]), true
}

func parseFloat(cols map[string]int, rec []string, name string) (float64, error) {
	s, _ := field(cols, rec, name)
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, s, err)
	}
	return v, nil
}

func parseRow(cols map[string]int, rec []string) (row, error) {
	var rw row
	var err error
	rw.HouseNumber, _ = field(cols, rec, colHouseNumber)
	rw.StreetName, _ = field(cols, rec, colStreetName)
	garage, _ := field(cols, rec, colGarage)
	rw.Garage = strings.EqualFold(garage, "Y")
	if rw.Latitude, err = parseFloat(cols, rec, colLatitude); err != nil {
		return row{}, err
	}
	if rw.Longitude, err = parseFloat(cols, rec, colLongitude); err != nil {
		return row{}, err
	}
	rw.Neighborhood, _ = field(cols, rec, colNeighborhood)
	rw.Ward, _ = field(cols, rec, colWard)
	class, _ := field(cols, rec, colClass)
	switch {
	case strings.EqualFold(class, string(store.Residential)):
		rw.Kind = store.Residential
	case strings.EqualFold(class, string(store.Commercial)):
		rw.Kind = store.Commercial
		rw.BusinessType, _ = field(cols, rec, colBusinessType)
		if rw.BusinessType == "" {
			rw.BusinessType = DefaultBusinessType
		}
	}
	if rw.Kind != "" {
		if rw.Value, err = parseFloat(cols, rec, colValue); err != nil {
			return row{}, err
		}
		if rw.Value < 0 {
			return row{}, fmt.Errorf("%s %v: negative", colValue, rw.Value)
		}
	}
	return rw, nil
}

// groupID: id for a neighbourhood or ward name, inserting it when unknown; created reports an insert.
// An empty name yields 0 (stored as NULL).
func (l *Loader) groupID(ctx context.Context, tx *sql.Tx, g store.Grouping, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, nil
	}
	cache, table := l.neighborhoods, "neighborhoods"
	if g == store.ByWard {
		cache, table = l.wards, "wards"
	}
	if id, ok := cache[name]; ok {
		return id, false, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx, store.Rebind(l.driver, "SELECT id FROM "+table+" WHERE name = ?"), name).Scan(&id)
	if err == nil {
		cache[name] = id
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("lookup %s %q: %w", g, name, err)
	}
	err = tx.QueryRowContext(ctx, store.Rebind(l.driver, "INSERT INTO "+table+"(name) VALUES(?) RETURNING id"), name).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("insert %s %q: %w", g, name, err)
	}
	cache[name] = id
	l.log.Debug("import_group_new", "group", g, "name", name, "id", id)
	return id, true, nil
}

func nullID(id int64) sql.NullInt64 { return sql.NullInt64{Int64: id, Valid: id != 0} }

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func (l *Loader) insertProperty(ctx context.Context, tx *sql.Tx, rw row, neighborhoodID, wardID int64) error {
	var pid int64
	err := tx.QueryRowContext(ctx, store.Rebind(l.driver, `INSERT INTO properties(house_number, street_name, garage, latitude, longitude, neighborhood_id, ward_id)
        VALUES(?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		nullString(rw.HouseNumber), rw.StreetName, rw.Garage, rw.Latitude, rw.Longitude, nullID(neighborhoodID), nullID(wardID),
	).Scan(&pid)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	switch rw.Kind {
	case store.Residential:
		_, err = tx.ExecContext(ctx, store.Rebind(l.driver, "INSERT INTO residential_properties(property_id, assessed_value) VALUES(?, ?)"), pid, rw.Value)
	case store.Commercial:
		_, err = tx.ExecContext(ctx, store.Rebind(l.driver, "INSERT INTO commercial_properties(property_id, assessed_value, business_type) VALUES(?, ?, ?)"), pid, rw.Value, rw.BusinessType)
	}
	if err != nil {
		return fmt.Errorf("insert %s assessment: %w", rw.Kind, err)
	}
	return nil
}
