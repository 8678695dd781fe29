package domain

import (
	"sort"
	"time"
)

// RuleKind identifies one configurable reservation-rule constraint.
type RuleKind string

const (
	KindCheckInDays  RuleKind = "check_in_days"
	KindCheckOutDays RuleKind = "check_out_days"
	KindMinStay      RuleKind = "min_stay_length"
	KindMaxStay      RuleKind = "max_stay_length"
	KindMinAdvance   RuleKind = "min_advance_reservation"
	KindMaxAdvance   RuleKind = "max_advance_reservation"
	KindBufferDays   RuleKind = "buffer_days"
)

// Restriction names one custom-rule blocking flag.
type Restriction string

const (
	RestrictCheckIn  Restriction = "check-in"
	RestrictCheckOut Restriction = "check-out"
	RestrictStayIn   Restriction = "stay-in"
)

// DatePeriod is an inclusive range of calendar dates.
type DatePeriod struct {
	From time.Time
	To   time.Time
}

func (p DatePeriod) Contains(d time.Time) bool {
	return !d.Before(p.From) && !d.After(p.To)
}

func (p DatePeriod) Intersects(o DatePeriod) bool {
	return !p.From.After(o.To) && !o.From.After(p.To)
}

// Season scopes reservation rules to a set of calendar periods.
// ID 0 is reserved to mean "all seasons" in rule configuration and never
// appears as a concrete season.
type Season struct {
	ID      int
	Name    string
	Periods []DatePeriod
}

func (s Season) ContainsDate(d time.Time) bool {
	for _, p := range s.Periods {
		if p.Contains(d) {
			return true
		}
	}
	return false
}

// WeekdaySet is a set of allowed weekdays (Sunday = 0).
type WeekdaySet map[time.Weekday]struct{}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	s := make(WeekdaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// AllWeekdays returns a fresh set containing every weekday.
func AllWeekdays() WeekdaySet {
	return NewWeekdaySet(
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	)
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	_, ok := s[d]
	return ok
}

func (s WeekdaySet) Clone() WeekdaySet {
	out := make(WeekdaySet, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// Union merges o into a copy of s.
func (s WeekdaySet) Union(o WeekdaySet) WeekdaySet {
	out := s.Clone()
	for d := range o {
		out[d] = struct{}{}
	}
	return out
}

// Days lists members in ascending order (stable for JSON output and tests).
func (s WeekdaySet) Days() []time.Weekday {
	out := make([]time.Weekday, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReservationRuleConfig is one raw season/room-type-scoped rule entry.
// Weekday kinds carry Days; numeric kinds carry Value. Season id 0 means
// "all seasons", room type id 0 means "all room types".
type ReservationRuleConfig struct {
	Kind        RuleKind
	SeasonIDs   []int
	RoomTypeIDs []int
	Days        []time.Weekday
	Value       int
}

// BufferRuleConfig is one raw buffer-days rule entry.
type BufferRuleConfig struct {
	SeasonIDs   []int
	RoomTypeIDs []int
	BufferDays  int
}

// CustomRuleConfig is one raw ad-hoc date-range rule. Dates are "2006-01-02"
// strings; entries with unparseable dates are dropped during ingest.
type CustomRuleConfig struct {
	RoomTypeID   int
	RoomID       int
	DateFrom     string
	DateTo       string
	Restrictions []Restriction
	Comment      string
}

// RoomDateRules is the per-room override slice of a resolved date record.
type RoomDateRules struct {
	NotCheckIn  bool
	NotCheckOut bool
	NotStayIn   bool
	Comment     string
}

// DateRules is the fully merged rule record for one (date, room type) pair.
type DateRules struct {
	CheckInDays    WeekdaySet
	CheckOutDays   WeekdaySet
	InCheckInDays  bool
	InCheckOutDays bool
	MinAdvance     int
	MaxAdvance     int // 0 = unbounded
	MinStay        int
	MaxStay        int // 0 = unbounded
	BufferDays     int
	NotCheckIn     bool
	NotCheckOut    bool
	NotStayIn      bool
	Comment        string
	RoomRules      map[int]RoomDateRules
}

// Clone returns a deep copy, so cached records can be handed out without
// aliasing the memoized value.
func (r DateRules) Clone() DateRules {
	out := r
	out.CheckInDays = r.CheckInDays.Clone()
	out.CheckOutDays = r.CheckOutDays.Clone()
	if len(r.RoomRules) > 0 {
		out.RoomRules = make(map[int]RoomDateRules, len(r.RoomRules))
		for id, rr := range r.RoomRules {
			out.RoomRules[id] = rr
		}
	}
	return out
}

// StayInRuleExport is one raw not-stay-in custom rule, as listed for
// administrative export.
type StayInRuleExport struct {
	RoomTypeID int       `json:"room_type_id"`
	RoomID     int       `json:"room_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Comment    string    `json:"comment"`
}
