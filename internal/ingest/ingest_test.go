package ingest

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"property-api/internal/config"
	"property-api/internal/migrate"
	"property-api/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

const sampleCSV = `Account Number,Suite,House Number,Street Name,Garage,Neighbourhood ID,Neighbourhood,Ward,Assessed Value,Latitude,Longitude,Assessment Class 1
1001,,10,JASPER AVENUE NW,Y,1150,Oliver,O-day'min,100,53.54,-113.52,RESIDENTIAL
1002,,11,JASPER AVENUE NW,N,1150,Oliver,O-day'min,"50",53.55,-113.53,COMMERCIAL
1003,,,RIVERDALE CRESCENT,y,1090,Riverdale,Metis,200,53.54,-113.47,Residential
1004,,12,FARM ROAD,N,1200,Riverdale,Metis,300,53.50,-113.40,FARMLAND
`

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrate.EnsureSchema(db, config.DriverSQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(1) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestLoadImportsRowsByClass(t *testing.T) {
	t.Parallel()

	db := openTempDB(t)
	sum, err := NewLoader(db, config.DriverSQLite, 100).Load(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Summary{Processed: 4, Residential: 2, Commercial: 1, Untyped: 1, Neighborhoods: 2, Wards: 2}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}
	if n := count(t, db, "properties"); n != 4 {
		t.Fatalf("properties = %d, want 4", n)
	}

	st := store.AttachDB(db, config.DriverSQLite)
	ctx := context.Background()
	props, err := st.ListProperties(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !props[0].Garage || props[1].Garage || !props[2].Garage {
		t.Fatalf("garage flags = %v %v %v", props[0].Garage, props[1].Garage, props[2].Garage)
	}
	if props[2].HouseNumber != "" {
		t.Fatalf("blank house number = %q", props[2].HouseNumber)
	}

	rec, err := st.GetProperty(ctx, props[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Commercial == nil || rec.Commercial.BusinessType != DefaultBusinessType || rec.Commercial.AssessedValue != 50 {
		t.Fatalf("commercial = %+v", rec.Commercial)
	}

	totals, err := st.Aggregate(ctx, store.Residential, store.Sum, store.ByNeighborhood)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if totals["Oliver"] != 100 || totals["Riverdale"] != 200 {
		t.Fatalf("totals = %v", totals)
	}
}

func TestLoadCommitsInBatches(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("Street Name,Garage,Latitude,Longitude,Neighbourhood,Ward,Assessment Class 1,Assessed Value,Business Type\n")
	for i := 0; i < 7; i++ {
		b.WriteString("MAIN STREET,N,1,2,Oliver,Ward A,COMMERCIAL,10,Restaurant\n")
	}
	db := openTempDB(t)
	sum, err := NewLoader(db, config.DriverSQLite, 2).Load(context.Background(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sum.Processed != 7 || sum.Commercial != 7 {
		t.Fatalf("summary = %+v", sum)
	}
	if n := count(t, db, "commercial_properties"); n != 7 {
		t.Fatalf("commercial rows = %d, want 7", n)
	}
	var bt string
	if err := db.QueryRow("SELECT business_type FROM commercial_properties LIMIT 1").Scan(&bt); err != nil {
		t.Fatalf("business type: %v", err)
	}
	if bt != "Restaurant" {
		t.Fatalf("business type = %q", bt)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	t.Parallel()

	csv := "Street Name,Garage,Latitude,Longitude,Neighbourhood,Ward,Assessment Class 1,Assessed Value\n" +
		"A ST,N,not-a-number,2,Oliver,W1,RESIDENTIAL,10\n" +
		"B ST,N,1,2,Oliver,W1,RESIDENTIAL,lots\n" +
		"C ST,N,1,2,Oliver,W1,RESIDENTIAL,-5\n" +
		"D ST,N,1,2,Oliver,W1,RESIDENTIAL,\"$1,250\"\n"
	db := openTempDB(t)
	sum, err := NewLoader(db, config.DriverSQLite, 100).Load(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sum.Skipped != 3 || sum.Processed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	var v float64
	if err := db.QueryRow("SELECT assessed_value FROM residential_properties").Scan(&v); err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != 1250 {
		t.Fatalf("value = %v, want 1250", v)
	}
}

func TestLoadEmptyGroupNamesStoreNull(t *testing.T) {
	t.Parallel()

	csv := "Street Name,Garage,Latitude,Longitude,Neighbourhood,Ward,Assessment Class 1,Assessed Value\n" +
		"A ST,N,1,2,,,RESIDENTIAL,10\n"
	db := openTempDB(t)
	sum, err := NewLoader(db, config.DriverSQLite, 100).Load(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sum.Neighborhoods != 0 || sum.Wards != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	var nulls int
	if err := db.QueryRow("SELECT COUNT(1) FROM properties WHERE neighborhood_id IS NULL AND ward_id IS NULL").Scan(&nulls); err != nil {
		t.Fatalf("count: %v", err)
	}
	if nulls != 1 {
		t.Fatalf("null refs = %d, want 1", nulls)
	}
}

func TestLoadReusesExistingGroups(t *testing.T) {
	t.Parallel()

	db := openTempDB(t)
	ctx := context.Background()
	if _, err := NewLoader(db, config.DriverSQLite, 100).Load(ctx, strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("first load: %v", err)
	}
	sum, err := NewLoader(db, config.DriverSQLite, 100).Load(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if sum.Neighborhoods != 0 || sum.Wards != 0 {
		t.Fatalf("second run created groups: %+v", sum)
	}
	if n := count(t, db, "neighborhoods"); n != 2 {
		t.Fatalf("neighborhoods = %d, want 2", n)
	}
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(openTempDB(t), config.DriverSQLite, 100).Load(context.Background(), strings.NewReader("Street Name,Garage\nA,N\n"))
	if err == nil || !strings.Contains(err.Error(), "Latitude") {
		t.Fatalf("err = %v, want missing column error", err)
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	db := openTempDB(t)
	l := NewLoader(db, config.DriverSQLite, 100)
	cancel()
	if _, err := l.Load(ctx, strings.NewReader(sampleCSV)); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if n := count(t, db, "properties"); n != 0 {
		t.Fatalf("properties = %d after cancelled load", n)
	}
}

func TestNilRedisLockIsNoop(t *testing.T) {
	t.Parallel()

	lk, err := AcquireLock(context.Background(), nil, DefaultLockKey, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := lk.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if errors.Is(err, ErrLocked) {
		t.Fatal("unexpected ErrLocked")
	}
}

func TestRedisLockExcludesSecondImporter(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	ctx := context.Background()

	first, err := AcquireLock(ctx, rc, DefaultLockKey, time.Minute)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := AcquireLock(ctx, rc, DefaultLockKey, time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("second acquire err = %v, want ErrLocked", err)
	}

	stranger := &Lock{rc: rc, key: DefaultLockKey, token: "not-the-holder"}
	if err := stranger.Release(ctx); err != nil {
		t.Fatalf("foreign release: %v", err)
	}
	if got, err := mr.Get(DefaultLockKey); err != nil || got != first.token {
		t.Fatalf("lock after foreign release = %q, %v; want holder token kept", got, err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(DefaultLockKey) {
		t.Fatal("lock key should be gone after release")
	}
	again, err := AcquireLock(ctx, rc, DefaultLockKey, time.Minute)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	_ = again.Release(ctx)
}

func TestRedisLockExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	ctx := context.Background()

	if _, err := AcquireLock(ctx, rc, DefaultLockKey, 30*time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(31 * time.Second)
	if _, err := AcquireLock(ctx, rc, DefaultLockKey, 30*time.Second); err != nil {
		t.Fatalf("acquire after ttl: %v", err)
	}
}

func TestLoadDoneLogCarriesAllCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLoader(openTempDB(t), config.DriverSQLite, 100)
	l.log = slog.New(slog.NewTextHandler(&buf, nil))
	if _, err := l.Load(context.Background(), strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("load: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"msg=import_done", "processed=4", "residential=2", "commercial=1", "untyped=1", "neighborhoods=2", "wards=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("import log %q missing %q", out, want)
		}
	}
}
