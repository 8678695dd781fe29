// Package rules evaluates date-scoped booking restrictions for room
// inventory: seasonal reservation rules (weekdays, stay lengths, advance
// windows, buffer days) merged with ad-hoc custom date-range rules, resolved
// lazily per (date, room type) and memoized for the engine's lifetime.
package rules

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rules/internal/domain"
)

const dateKeyLayout = "20060102"

// Config is the full parsed rule configuration an engine is built from.
type Config struct {
	Seasons          []domain.Season
	ReservationRules []domain.ReservationRuleConfig
	BufferRules      []domain.BufferRuleConfig
	CustomRules      []domain.CustomRuleConfig
	RoomTypeIDs      []int
}

// Hooks are the two host extension points. Nil funcs are no-ops.
type Hooks struct {
	// HasStayInBlocks may override the "any not-stay-in rules exist" flag
	// once, right after ingest.
	HasStayInBlocks func(has bool) bool
	// AdjustDateRules may rewrite a freshly resolved record before it is
	// cached. It is never re-invoked for cached dates.
	AdjustDateRules func(r domain.DateRules, roomTypeID int, date time.Time) domain.DateRules
}

type Option func(*Engine)

func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithNow injects the clock used by advance-window predicates.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// ruleValue holds either a weekday set or a positive integer, depending on
// the rule kind it is stored under.
type ruleValue struct {
	days domain.WeekdaySet
	num  int
}

// customRule is one parsed custom entry. From/to are date keys (Ymd) so range
// checks are plain string comparisons, matching the period it also carries.
type customRule struct {
	roomID      int
	from, to    string
	period      domain.DatePeriod
	notCheckIn  bool
	notCheckOut bool
	notStayIn   bool
	comment     string
}

type hasFlags struct {
	checkInDays  bool
	checkOutDays bool
	minStay      bool
	maxStay      bool
	minAdvance   bool
	maxAdvance   bool
	bufferDays   bool
	notCheckIn   bool
	notCheckOut  bool
	notStayIn    bool
}

func (h hasFlags) any() bool {
	return h.checkInDays || h.checkOutDays ||
		h.minStay || h.maxStay ||
		h.minAdvance || h.maxAdvance ||
		h.notCheckIn || h.notCheckOut || h.notStayIn
}

type cacheKey struct {
	date     string
	roomType int
}

// Engine holds the ingested rule indices and the resolution memo. All state
// except the memo is immutable after New.
type Engine struct {
	seasons []domain.Season

	// season id -> room type id -> kind -> value; ids 0 are wildcards.
	reservation map[int]map[int]map[domain.RuleKind]ruleValue

	// room type id -> entries in configuration order (room id carried per
	// entry so merge order stays deterministic).
	custom map[int][]customRule

	has       hasFlags
	inventory domain.RoomInventory
	hooks     Hooks
	now       func() time.Time

	mu    sync.RWMutex
	cache map[cacheKey]domain.DateRules
}

// New ingests configuration into an engine. Malformed rule entries are
// dropped, never surfaced: the surrounding booking flow must keep working
// with partially invalid configuration.
func New(cfg Config, inventory domain.RoomInventory, opts ...Option) *Engine {
	e := &Engine{
		seasons:     cfg.Seasons,
		reservation: make(map[int]map[int]map[domain.RuleKind]ruleValue),
		custom:      make(map[int][]customRule),
		inventory:   inventory,
		now:         time.Now,
		cache:       make(map[cacheKey]domain.DateRules),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.ingestReservationRules(cfg)
	e.ingestCustomRules(cfg.CustomRules)

	if !e.has.notStayIn && e.hooks.HasStayInBlocks != nil {
		e.has.notStayIn = e.hooks.HasStayInBlocks(e.has.notStayIn)
	}
	return e
}

func numericKind(k domain.RuleKind) bool {
	switch k {
	case domain.KindMinStay, domain.KindMaxStay,
		domain.KindMinAdvance, domain.KindMaxAdvance, domain.KindBufferDays:
		return true
	}
	return false
}

func (e *Engine) ingestReservationRules(cfg Config) {
	rules := make([]domain.ReservationRuleConfig, 0, len(cfg.ReservationRules)+len(cfg.BufferRules))
	rules = append(rules, cfg.ReservationRules...)
	for _, b := range cfg.BufferRules {
		rules = append(rules, domain.ReservationRuleConfig{
			Kind:        domain.KindBufferDays,
			SeasonIDs:   b.SeasonIDs,
			RoomTypeIDs: b.RoomTypeIDs,
			Value:       b.BufferDays,
		})
	}

	seasonIDs := make([]int, 0, len(cfg.Seasons))
	for _, s := range cfg.Seasons {
		seasonIDs = append(seasonIDs, s.ID)
	}

	seen := make(map[domain.RuleKind]bool)
	for _, rc := range rules {
		var v ruleValue
		valid := false
		if numericKind(rc.Kind) {
			v.num = rc.Value
			valid = rc.Value > 0
		} else if rc.Kind == domain.KindCheckInDays || rc.Kind == domain.KindCheckOutDays {
			v.days = domain.NewWeekdaySet(rc.Days...)
			valid = len(v.days) > 0
		}
		if !valid || len(rc.SeasonIDs) == 0 || len(rc.RoomTypeIDs) == 0 {
			log.Debug().Str("kind", string(rc.Kind)).Msg("dropping malformed reservation rule")
			continue
		}
		seen[rc.Kind] = true

		ruleSeasons := rc.SeasonIDs
		if containsInt(ruleSeasons, 0) {
			// season-agnostic rules stay visible under id 0 (for
			// season-independent lookups) and under every concrete season.
			ruleSeasons = append([]int{0}, seasonIDs...)
		}

		for _, seasonID := range ruleSeasons {
			for _, roomTypeID := range rc.RoomTypeIDs {
				e.storeRule(seasonID, roomTypeID, rc.Kind, v)
			}
		}
	}

	e.has.checkInDays = seen[domain.KindCheckInDays]
	e.has.checkOutDays = seen[domain.KindCheckOutDays]
	e.has.minStay = seen[domain.KindMinStay]
	e.has.maxStay = seen[domain.KindMaxStay]
	e.has.minAdvance = seen[domain.KindMinAdvance]
	e.has.maxAdvance = seen[domain.KindMaxAdvance]
	e.has.bufferDays = seen[domain.KindBufferDays]

	for _, kind := range []domain.RuleKind{
		domain.KindCheckInDays, domain.KindCheckOutDays,
		domain.KindMinStay, domain.KindMaxStay,
		domain.KindMinAdvance, domain.KindMaxAdvance,
	} {
		e.deriveCommonRule(kind, len(cfg.RoomTypeIDs))
	}
}

// storeRule writes with insert-if-absent semantics: the first configured rule
// of a kind for a (season, room type) pair wins, later ones are dropped.
func (e *Engine) storeRule(seasonID, roomTypeID int, kind domain.RuleKind, v ruleValue) {
	byType, ok := e.reservation[seasonID]
	if !ok {
		byType = make(map[int]map[domain.RuleKind]ruleValue)
		e.reservation[seasonID] = byType
	}
	byKind, ok := byType[roomTypeID]
	if !ok {
		byKind = make(map[domain.RuleKind]ruleValue)
		byType[roomTypeID] = byKind
	}
	if _, exists := byKind[kind]; exists {
		log.Debug().
			Int("season", seasonID).
			Int("room_type", roomTypeID).
			Str("kind", string(kind)).
			Msg("duplicate reservation rule, keeping first")
		return
	}
	byKind[kind] = v
}

// deriveCommonRule synthesizes a room-type-0 entry per season for one kind
// when no explicit one exists and every known room type carries an explicit
// rule of that kind: minimum for min-kinds, maximum for max-kinds, weekday
// union for day-set kinds. Buffer days are never derived.
func (e *Engine) deriveCommonRule(kind domain.RuleKind, roomTypeCount int) {
	if roomTypeCount == 0 {
		return
	}
	for seasonID, byType := range e.reservation {
		if _, hasCommon := byType[0][kind]; hasCommon {
			continue
		}

		covered := 0
		var common ruleValue
		first := true
		for roomTypeID, byKind := range byType {
			if roomTypeID == 0 {
				continue
			}
			v, ok := byKind[kind]
			if !ok {
				continue
			}
			covered++
			switch kind {
			case domain.KindMinStay, domain.KindMinAdvance:
				if first || v.num < common.num {
					common.num = v.num
				}
			case domain.KindMaxStay, domain.KindMaxAdvance:
				if first || v.num > common.num {
					common.num = v.num
				}
			case domain.KindCheckInDays, domain.KindCheckOutDays:
				if first {
					common.days = v.days.Clone()
				} else {
					common.days = common.days.Union(v.days)
				}
			}
			first = false
		}

		if covered == roomTypeCount {
			e.storeRule(seasonID, 0, kind, common)
		}
	}
}

func (e *Engine) ingestCustomRules(configs []domain.CustomRuleConfig) {
	for _, rc := range configs {
		from, errFrom := time.ParseInLocation("2006-01-02", rc.DateFrom, time.UTC)
		to, errTo := time.ParseInLocation("2006-01-02", rc.DateTo, time.UTC)
		if errFrom != nil || errTo != nil {
			log.Debug().
				Str("from", rc.DateFrom).
				Str("to", rc.DateTo).
				Msg("dropping custom rule with unparseable dates")
			continue
		}

		cr := customRule{
			roomID:  rc.RoomID,
			from:    from.Format(dateKeyLayout),
			to:      to.Format(dateKeyLayout),
			period:  domain.DatePeriod{From: from, To: to},
			comment: rc.Comment,
		}
		for _, r := range rc.Restrictions {
			switch r {
			case domain.RestrictCheckIn:
				cr.notCheckIn = true
			case domain.RestrictCheckOut:
				cr.notCheckOut = true
			case domain.RestrictStayIn:
				cr.notStayIn = true
			}
		}
		e.has.notCheckIn = e.has.notCheckIn || cr.notCheckIn
		e.has.notCheckOut = e.has.notCheckOut || cr.notCheckOut
		e.has.notStayIn = e.has.notStayIn || cr.notStayIn

		e.custom[rc.RoomTypeID] = append(e.custom[rc.RoomTypeID], cr)
	}
}

// customRuleLists returns the applicable entry lists for a room type:
// the "all room types" list first, then the specific one, because custom
// rules merge rather than override.
func (e *Engine) customRuleLists(roomTypeID int) [][]customRule {
	lists := make([][]customRule, 0, 2)
	if rs, ok := e.custom[0]; ok {
		lists = append(lists, rs)
	}
	if roomTypeID > 0 {
		if rs, ok := e.custom[roomTypeID]; ok {
			lists = append(lists, rs)
		}
	}
	return lists
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
