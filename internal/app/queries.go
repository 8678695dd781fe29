package app

import (
	"context"
	"fmt"
	"time"

	"hotel_rules/internal/adapters/observability"
	"hotel_rules/internal/domain"
	"hotel_rules/internal/rules"
)

// AvailabilityService composes engine queries into HTTP-facing answers and
// memoizes them in the shared cache. The engine itself already memoizes per
// (date, room type); the cache here saves the full composite scan on repeated
// identical requests across processes.
type AvailabilityService struct {
	engine   *rules.Engine
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewAvailabilityService(e *rules.Engine, c domain.Cache, ttl time.Duration) *AvailabilityService {
	return &AvailabilityService{engine: e, cache: c, cacheTTL: ttl}
}

// CheckBooking evaluates every booking rule against a candidate stay and
// returns the per-rule breakdown plus the blocked room ids.
func (s *AvailabilityService) CheckBooking(ctx context.Context, roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) (domain.BookingCheck, error) {
	key := fmt.Sprintf("rulecheck:%d:%s:%s:%t",
		roomTypeID, checkIn.Format("20060102"), checkOut.Format("20060102"), ignoreRules)
	var out domain.BookingCheck
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	e := s.engine
	out = domain.BookingCheck{
		RoomTypeID:         roomTypeID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		CheckInTooEarly:    e.IsCheckInEarlierThanMinAdvance(roomTypeID, checkIn, ignoreRules),
		CheckInTooLate:     e.IsCheckInLaterThanMaxAdvance(roomTypeID, checkIn, ignoreRules),
		MinStayViolated:    e.IsMinStayViolated(roomTypeID, checkIn, checkOut, ignoreRules),
		MaxStayViolated:    e.IsMaxStayViolated(roomTypeID, checkIn, checkOut, ignoreRules),
		CheckInNotAllowed:  e.IsCheckInNotAllowed(roomTypeID, checkIn, ignoreRules),
		CheckOutNotAllowed: e.IsCheckOutNotAllowed(roomTypeID, checkOut, ignoreRules),
		StayInNotAllowed:   e.IsStayInNotAllowed(roomTypeID, checkIn, checkOut, ignoreRules),
		MinStay:            e.MinStayDays(roomTypeID, checkIn, ignoreRules),
		MaxStay:            e.MaxStayDays(roomTypeID, checkIn, ignoreRules),
		MinAdvance:         e.MinAdvanceReservationDays(roomTypeID, checkIn, ignoreRules),
		MaxAdvance:         e.MaxAdvanceReservationDays(roomTypeID, checkIn, ignoreRules),
		BufferDays:         e.BufferDays(roomTypeID, checkIn, ignoreRules),
		UnavailableRoomIDs: e.UnavailableRoomIDs(roomTypeID, checkIn, checkOut, ignoreRules),
	}
	out.Violated = out.CheckInTooEarly || out.CheckInTooLate ||
		out.MinStayViolated || out.MaxStayViolated ||
		out.CheckInNotAllowed || out.CheckOutNotAllowed || out.StayInNotAllowed

	countViolations(out)

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func countViolations(c domain.BookingCheck) {
	for kind, hit := range map[string]bool{
		"min_advance_reservation": c.CheckInTooEarly,
		"max_advance_reservation": c.CheckInTooLate,
		"min_stay_length":         c.MinStayViolated,
		"max_stay_length":         c.MaxStayViolated,
		"check_in":                c.CheckInNotAllowed,
		"check_out":               c.CheckOutNotAllowed,
		"stay_in":                 c.StayInNotAllowed,
	} {
		if hit {
			observability.ObserveViolation(kind)
		}
	}
}

// UnavailableRooms answers just the blocked-room list for a stay.
func (s *AvailabilityService) UnavailableRooms(ctx context.Context, roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) ([]int, error) {
	check, err := s.CheckBooking(ctx, roomTypeID, checkIn, checkOut, ignoreRules)
	if err != nil {
		return nil, err
	}
	return check.UnavailableRoomIDs, nil
}

// BlockedRoomsCount is uncached: single-date lookups already hit the engine's
// own memo.
func (s *AvailabilityService) BlockedRoomsCount(roomTypeID int, date time.Time, ignoreRules bool) int {
	return s.engine.BlockedRoomsCount(roomTypeID, date, ignoreRules)
}

func (s *AvailabilityService) StayInComments(roomTypeID int, roomIDs []int, period *domain.DatePeriod) map[int]map[string]string {
	return s.engine.StayInComments(roomTypeID, roomIDs, period)
}

func (s *AvailabilityService) StayInRulesForExport(roomTypeID, roomID int) []domain.StayInRuleExport {
	return s.engine.StayInRulesForExport(roomTypeID, roomID)
}
