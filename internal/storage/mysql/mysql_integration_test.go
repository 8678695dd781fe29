//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

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

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

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
	return db
}

func seed(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
}

func TestRepo_MySQL_LoadConfiguration(t *testing.T) {
	db := startMySQL(t)

	seed(t, db,
		`INSERT INTO seasons (id, name, priority) VALUES (2, 'winter', 1), (1, 'summer', 0)`,
		`INSERT INTO season_periods (season_id, date_from, date_to) VALUES
			(1, '2026-06-01', '2026-08-31'),
			(2, '2026-12-01', '2027-02-28')`,
		`INSERT INTO reservation_rules (kind, season_ids, room_type_ids, days, value) VALUES
			('min_stay_length', '[1]', '[2]', NULL, 3),
			('check_in_days', '[0]', '[2]', '[1,2,3,4,5]', NULL)`,
		`INSERT INTO buffer_rules (season_ids, room_type_ids, buffer_days) VALUES ('[0]', '[2]', 2)`,
		`INSERT INTO custom_rules (room_type_id, room_id, date_from, date_to, restrictions, comment) VALUES
			(2, 5, '2026-07-10', '2026-07-12', '["stay-in"]', 'renovation'),
			(2, 0, '2026-07-20', '2026-07-20', '["check-in","check-out"]', NULL)`,
		`INSERT INTO room_types (id, name, active) VALUES (2, 'double', 1), (3, 'suite', 0)`,
		`INSERT INTO rooms (id, room_type_id, active) VALUES (5, 2, 1), (9, 2, 1), (11, 2, 0), (20, 3, 1)`,
	)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	seasons, err := repo.ListSeasons(ctx)
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(seasons) != 2 || seasons[0].ID != 1 || seasons[1].ID != 2 {
		t.Fatalf("seasons out of priority order: %+v", seasons)
	}
	if len(seasons[0].Periods) != 1 ||
		!seasons[0].Periods[0].From.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("season periods: %+v", seasons[0].Periods)
	}

	reservation, err := repo.ListReservationRules(ctx)
	if err != nil {
		t.Fatalf("ListReservationRules: %v", err)
	}
	if len(reservation) != 2 {
		t.Fatalf("expected 2 reservation rules, got %+v", reservation)
	}
	if reservation[0].Kind != domain.KindMinStay || reservation[0].Value != 3 ||
		!reflect.DeepEqual(reservation[0].SeasonIDs, []int{1}) {
		t.Fatalf("min-stay rule: %+v", reservation[0])
	}
	wantDays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	if reservation[1].Kind != domain.KindCheckInDays || !reflect.DeepEqual(reservation[1].Days, wantDays) {
		t.Fatalf("check-in-days rule: %+v", reservation[1])
	}

	buffer, err := repo.ListBufferRules(ctx)
	if err != nil {
		t.Fatalf("ListBufferRules: %v", err)
	}
	if len(buffer) != 1 || buffer[0].BufferDays != 2 {
		t.Fatalf("buffer rules: %+v", buffer)
	}

	custom, err := repo.ListCustomRules(ctx)
	if err != nil {
		t.Fatalf("ListCustomRules: %v", err)
	}
	if len(custom) != 2 {
		t.Fatalf("expected 2 custom rules, got %+v", custom)
	}
	if custom[0].RoomID != 5 || custom[0].DateFrom != "2026-07-10" || custom[0].Comment != "renovation" ||
		!reflect.DeepEqual(custom[0].Restrictions, []domain.Restriction{domain.RestrictStayIn}) {
		t.Fatalf("stay-in custom rule: %+v", custom[0])
	}
	if custom[1].Comment != "" || len(custom[1].Restrictions) != 2 {
		t.Fatalf("check-in/out custom rule: %+v", custom[1])
	}

	roomTypeIDs, err := repo.ListRoomTypeIDs(ctx)
	if err != nil {
		t.Fatalf("ListRoomTypeIDs: %v", err)
	}
	// inactive room types stay out of the catalog
	if !reflect.DeepEqual(roomTypeIDs, []int{2}) {
		t.Fatalf("room type ids: %v", roomTypeIDs)
	}

	inv, err := repo.LoadInventory(ctx)
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	if got := inv.CountActiveRooms(2); got != 2 {
		t.Fatalf("active rooms for type 2 expected 2, got %d", got)
	}
	ids := inv.ListRoomIDs(2)
	sort.Ints(ids)
	if !reflect.DeepEqual(ids, []int{5, 9}) {
		t.Fatalf("room ids for type 2: %v", ids)
	}
}
