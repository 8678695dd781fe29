//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "hotel_rules/internal/adapters/http_server"
	"hotel_rules/internal/app"
	"hotel_rules/internal/domain"
	mysqlrepo "hotel_rules/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func TestHTTP_EndToEnd_BookingCheck(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotel_rules",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotel_rules")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Seed one season with a 3-night minimum and a room-scoped stay-in block
	for _, stmt := range []string{
		`INSERT INTO seasons (id, name, priority) VALUES (1, 'summer', 0)`,
		`INSERT INTO season_periods (season_id, date_from, date_to) VALUES (1, '2026-06-01', '2026-08-31')`,
		`INSERT INTO reservation_rules (kind, season_ids, room_type_ids, days, value) VALUES
			('min_stay_length', '[1]', '[2]', NULL, 3)`,
		`INSERT INTO custom_rules (room_type_id, room_id, date_from, date_to, restrictions, comment) VALUES
			(2, 5, '2026-07-10', '2026-07-11', '["stay-in"]', 'renovation')`,
		`INSERT INTO room_types (id, name, active) VALUES (2, 'double', 1)`,
		`INSERT INTO rooms (id, room_type_id, active) VALUES (5, 2, 1), (9, 2, 1)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}

	// Wire the real stack on top of the seeded database
	ctx := context.Background()
	repo := mysqlrepo.New(db)
	inventory, err := repo.LoadInventory(ctx)
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	engine, err := app.LoadEngine(ctx, repo, inventory)
	if err != nil {
		t.Fatalf("LoadEngine: %v", err)
	}
	svc := app.NewAvailabilityService(engine, nil, 0)

	srv := server.New(100)
	srv.MountHandlers(&server.Handlers{Q: svc})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Too short: the 3-night minimum blocks the whole room type
	res, err := http.Get(ts.URL + "/v1/room-types/2/booking-check?check_in=2026-07-10&check_out=2026-07-11")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var short domain.BookingCheck
	if err := json.NewDecoder(res.Body).Decode(&short); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !short.Violated || !short.MinStayViolated || short.MinStay != 3 {
		t.Fatalf("short stay breakdown: %+v", short)
	}
	if len(short.UnavailableRoomIDs) != 2 {
		t.Fatalf("short stay should block every room: %v", short.UnavailableRoomIDs)
	}

	// Long enough: only the renovated room is unavailable
	res2, err := http.Get(ts.URL + "/v1/room-types/2/booking-check?check_in=2026-07-10&check_out=2026-07-13")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res2.Body.Close()
	var long domain.BookingCheck
	if err := json.NewDecoder(res2.Body).Decode(&long); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if long.Violated {
		t.Fatalf("3-night stay should pass: %+v", long)
	}
	if len(long.UnavailableRoomIDs) != 1 || long.UnavailableRoomIDs[0] != 5 {
		t.Fatalf("expected only room 5 blocked: %v", long.UnavailableRoomIDs)
	}
}
