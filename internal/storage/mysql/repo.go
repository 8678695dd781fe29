package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hotel_rules/internal/domain"
)

// Repo loads rule configuration and room inventory for engine construction.
// It implements domain.RuleSource; LoadInventory returns the snapshot the
// engine consumes through domain.RoomInventory.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func decodeInts(raw []byte) ([]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []int
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListSeasons(ctx context.Context) ([]domain.Season, error) {
	rows, err := r.db.QueryContext(ctx, listSeasonsSQL)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []domain.Season
	index := make(map[int]int) // season id -> position, keeps query order
	for rows.Next() {
		var s domain.Season
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		index[s.ID] = len(seasons)
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.QueryContext(ctx, listSeasonPeriodsSQL)
	if err != nil {
		return nil, fmt.Errorf("list season periods: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var seasonID int
		var from, to time.Time
		if err := prows.Scan(&seasonID, &from, &to); err != nil {
			return nil, fmt.Errorf("scan season period: %w", err)
		}
		if i, ok := index[seasonID]; ok {
			seasons[i].Periods = append(seasons[i].Periods, domain.DatePeriod{From: from.UTC(), To: to.UTC()})
		}
	}
	return seasons, prows.Err()
}

func (r *Repo) ListReservationRules(ctx context.Context) ([]domain.ReservationRuleConfig, error) {
	rows, err := r.db.QueryContext(ctx, listReservationRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("list reservation rules: %w", err)
	}
	defer rows.Close()

	var out []domain.ReservationRuleConfig
	for rows.Next() {
		var kind string
		var seasonsRaw, typesRaw, daysRaw []byte
		var value sql.NullInt64
		if err := rows.Scan(&kind, &seasonsRaw, &typesRaw, &daysRaw, &value); err != nil {
			return nil, fmt.Errorf("scan reservation rule: %w", err)
		}
		rc := domain.ReservationRuleConfig{Kind: domain.RuleKind(kind), Value: int(value.Int64)}
		if rc.SeasonIDs, err = decodeInts(seasonsRaw); err != nil {
			return nil, fmt.Errorf("decode season_ids: %w", err)
		}
		if rc.RoomTypeIDs, err = decodeInts(typesRaw); err != nil {
			return nil, fmt.Errorf("decode room_type_ids: %w", err)
		}
		days, err := decodeInts(daysRaw)
		if err != nil {
			return nil, fmt.Errorf("decode days: %w", err)
		}
		for _, d := range days {
			rc.Days = append(rc.Days, time.Weekday(d))
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *Repo) ListBufferRules(ctx context.Context) ([]domain.BufferRuleConfig, error) {
	rows, err := r.db.QueryContext(ctx, listBufferRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("list buffer rules: %w", err)
	}
	defer rows.Close()

	var out []domain.BufferRuleConfig
	for rows.Next() {
		var seasonsRaw, typesRaw []byte
		var rc domain.BufferRuleConfig
		if err := rows.Scan(&seasonsRaw, &typesRaw, &rc.BufferDays); err != nil {
			return nil, fmt.Errorf("scan buffer rule: %w", err)
		}
		if rc.SeasonIDs, err = decodeInts(seasonsRaw); err != nil {
			return nil, fmt.Errorf("decode season_ids: %w", err)
		}
		if rc.RoomTypeIDs, err = decodeInts(typesRaw); err != nil {
			return nil, fmt.Errorf("decode room_type_ids: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *Repo) ListCustomRules(ctx context.Context) ([]domain.CustomRuleConfig, error) {
	rows, err := r.db.QueryContext(ctx, listCustomRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("list custom rules: %w", err)
	}
	defer rows.Close()

	var out []domain.CustomRuleConfig
	for rows.Next() {
		var rc domain.CustomRuleConfig
		var restrictionsRaw []byte
		var comment sql.NullString
		if err := rows.Scan(&rc.RoomTypeID, &rc.RoomID, &rc.DateFrom, &rc.DateTo, &restrictionsRaw, &comment); err != nil {
			return nil, fmt.Errorf("scan custom rule: %w", err)
		}
		rc.Comment = comment.String
		if len(restrictionsRaw) > 0 {
			var rs []string
			if err := json.Unmarshal(restrictionsRaw, &rs); err != nil {
				return nil, fmt.Errorf("decode restrictions: %w", err)
			}
			for _, s := range rs {
				rc.Restrictions = append(rc.Restrictions, domain.Restriction(s))
			}
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *Repo) ListRoomTypeIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, listRoomTypeIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room type id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Inventory is an immutable snapshot of the active-room catalog.
type Inventory struct {
	rooms map[int][]int
}

func (inv *Inventory) CountActiveRooms(roomTypeID int) int {
	return len(inv.rooms[roomTypeID])
}

func (inv *Inventory) ListRoomIDs(roomTypeID int) []int {
	ids := inv.rooms[roomTypeID]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

func (r *Repo) LoadInventory(ctx context.Context) (*Inventory, error) {
	rows, err := r.db.QueryContext(ctx, listActiveRoomsSQL)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	inv := &Inventory{rooms: make(map[int][]int)}
	for rows.Next() {
		var id, roomTypeID int
		if err := rows.Scan(&id, &roomTypeID); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		inv.rooms[roomTypeID] = append(inv.rooms[roomTypeID], id)
	}
	return inv, rows.Err()
}
