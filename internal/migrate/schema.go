package migrate

import (
	"database/sql"
	"fmt"

	"property-api/internal/config"
	"property-api/internal/logger"
)

// EnsureSchema: create the grouping, property and assessment tables when missing.
// Constraint: IF NOT EXISTS only; existing tables are never altered.
func EnsureSchema(db *sql.DB, driver string) error {
	idCol := "SERIAL PRIMARY KEY"
	switch driver {
	case config.DriverPostgres:
	case config.DriverSQLite:
		idCol = "INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS neighborhoods (
            id ` + idCol + `,
            name VARCHAR(100) NOT NULL UNIQUE
        )`,
		`CREATE TABLE IF NOT EXISTS wards (
            id ` + idCol + `,
            name VARCHAR(100) NOT NULL UNIQUE
        )`,
		`CREATE TABLE IF NOT EXISTS properties (
            id ` + idCol + `,
            house_number VARCHAR(50),
            street_name VARCHAR(100) NOT NULL DEFAULT '',
            garage BOOLEAN NOT NULL DEFAULT FALSE,
            latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
            longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
            neighborhood_id INTEGER REFERENCES neighborhoods(id),
            ward_id INTEGER REFERENCES wards(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_properties_neighborhood ON properties(neighborhood_id)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_ward ON properties(ward_id)`,
		`CREATE TABLE IF NOT EXISTS residential_properties (
            id ` + idCol + `,
            property_id INTEGER NOT NULL REFERENCES properties(id),
            assessed_value DOUBLE PRECISION NOT NULL DEFAULT 0
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_residential_property ON residential_properties(property_id)`,
		`CREATE INDEX IF NOT EXISTS idx_residential_value ON residential_properties(assessed_value)`,
		`CREATE TABLE IF NOT EXISTS commercial_properties (
            id ` + idCol + `,
            property_id INTEGER NOT NULL REFERENCES properties(id),
            assessed_value DOUBLE PRECISION NOT NULL DEFAULT 0,
            business_type VARCHAR(100) NOT NULL DEFAULT ''
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_commercial_property ON commercial_properties(property_id)`,
		`CREATE INDEX IF NOT EXISTS idx_commercial_value ON commercial_properties(assessed_value)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i, "driver", driver)
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
