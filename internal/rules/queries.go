package rules

import (
	"sort"
	"time"

	"hotel_rules/internal/domain"
)

// Every query accepts an ignoreRules flag; when set it reports the
// unrestricted answer without touching the resolver. Otherwise each query
// first consults the "were rules of this kind configured at all" flags so an
// unconfigured installation never pays for resolution.
//
// Preconditions (not validated here): checkIn <= checkOut, and
// checkIn < checkOut for the stay-length and stay-in predicates.

// IsCheckInEarlierThanMinAdvance reports whether the stay starts sooner than
// the resolved minimum advance-reservation window allows.
func (e *Engine) IsCheckInEarlierThanMinAdvance(roomTypeID int, checkIn time.Time, ignoreRules bool) bool {
	return !ignoreRules &&
		e.has.minAdvance &&
		e.nightsFromToday(checkIn) < e.MinAdvanceReservationDays(roomTypeID, checkIn, ignoreRules)
}

// MinAdvanceReservationDays returns the resolved minimum advance window for a
// date, or 0 when unrestricted.
func (e *Engine) MinAdvanceReservationDays(roomTypeID int, date time.Time, ignoreRules bool) int {
	if ignoreRules || !e.has.minAdvance {
		return 0
	}
	return e.resolve(roomTypeID, date).MinAdvance
}

// IsCheckInLaterThanMaxAdvance reports whether the stay starts beyond the
// resolved maximum advance-reservation window. Max 0 means unbounded.
func (e *Engine) IsCheckInLaterThanMaxAdvance(roomTypeID int, checkIn time.Time, ignoreRules bool) bool {
	max := e.MaxAdvanceReservationDays(roomTypeID, checkIn, ignoreRules)
	return !ignoreRules &&
		e.has.maxAdvance &&
		max > 0 &&
		e.nightsFromToday(checkIn) > max
}

// MaxAdvanceReservationDays returns the resolved maximum advance window for a
// date, or 0 when unbounded.
func (e *Engine) MaxAdvanceReservationDays(roomTypeID int, date time.Time, ignoreRules bool) int {
	if ignoreRules || !e.has.maxAdvance {
		return 0
	}
	return e.resolve(roomTypeID, date).MaxAdvance
}

// IsMinStayViolated reports whether the stay is shorter than the minimum
// resolved for the check-in date.
func (e *Engine) IsMinStayViolated(roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) bool {
	return !ignoreRules &&
		e.has.minStay &&
		nights(checkIn, checkOut) < e.MinStayDays(roomTypeID, checkIn, ignoreRules)
}

// MinStayDays returns the resolved minimum stay length for a date; 1 when
// unrestricted.
func (e *Engine) MinStayDays(roomTypeID int, date time.Time, ignoreRules bool) int {
	if ignoreRules || !e.has.minStay {
		return 1
	}
	return e.resolve(roomTypeID, date).MinStay
}

// IsMaxStayViolated reports whether the stay is longer than the maximum
// resolved for the check-in date. Max 0 means unbounded.
func (e *Engine) IsMaxStayViolated(roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) bool {
	max := e.MaxStayDays(roomTypeID, checkIn, ignoreRules)
	return !ignoreRules &&
		e.has.maxStay &&
		max > 0 &&
		nights(checkIn, checkOut) > max
}

// MaxStayDays returns the resolved maximum stay length for a date; 0 when
// unbounded.
func (e *Engine) MaxStayDays(roomTypeID int, date time.Time, ignoreRules bool) int {
	if ignoreRules || !e.has.maxStay {
		return 0
	}
	return e.resolve(roomTypeID, date).MaxStay
}

// MinStayDaysForAllSeasons answers the season-agnostic minimum stay: it reads
// the season-wildcard index directly, without a date, preferring the specific
// room type over the room-type wildcard.
func (e *Engine) MinStayDaysForAllSeasons(roomTypeID int) int {
	if v, ok := e.reservation[0][roomTypeID][domain.KindMinStay]; ok {
		return v.num
	}
	if v, ok := e.reservation[0][0][domain.KindMinStay]; ok {
		return v.num
	}
	return 1
}

// HasBufferDaysRules reports whether any buffer rule was configured.
func (e *Engine) HasBufferDaysRules(ignoreRules bool) bool {
	return !ignoreRules && e.has.bufferDays
}

// BufferDays returns the resolved buffer-day count for a date.
func (e *Engine) BufferDays(roomTypeID int, date time.Time, ignoreRules bool) int {
	if ignoreRules || !e.has.bufferDays {
		return 0
	}
	return e.resolve(roomTypeID, date).BufferDays
}

// IsCheckInNotAllowed reports whether checking in on the date is blocked,
// either by an explicit custom block or by the allowed-weekday set.
func (e *Engine) IsCheckInNotAllowed(roomTypeID int, checkIn time.Time, ignoreRules bool) bool {
	if ignoreRules || (!e.has.notCheckIn && !e.has.checkInDays) {
		return false
	}
	r := e.resolve(roomTypeID, checkIn)
	return r.NotCheckIn || !r.InCheckInDays
}

// IsCheckOutNotAllowed reports whether checking out on the date is blocked.
func (e *Engine) IsCheckOutNotAllowed(roomTypeID int, checkOut time.Time, ignoreRules bool) bool {
	if ignoreRules || (!e.has.notCheckOut && !e.has.checkOutDays) {
		return false
	}
	r := e.resolve(roomTypeID, checkOut)
	return r.NotCheckOut || !r.InCheckOutDays
}

// IsStayInNotAllowed reports whether any night of [checkIn, checkOut) is
// blocked for the whole room type. The check-out date itself is not an
// occupied night and is never evaluated.
func (e *Engine) IsStayInNotAllowed(roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) bool {
	if ignoreRules || !e.has.notStayIn {
		return false
	}
	return eachNight(checkIn, checkOut, func(d time.Time) bool {
		return e.resolve(roomTypeID, d).NotStayIn
	})
}

// IsBookingRulesViolated is the composite gate an availability workflow uses:
// true when any single rule rejects the stay.
func (e *Engine) IsBookingRulesViolated(roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) bool {
	return e.IsCheckInEarlierThanMinAdvance(roomTypeID, checkIn, ignoreRules) ||
		e.IsCheckInLaterThanMaxAdvance(roomTypeID, checkIn, ignoreRules) ||
		e.IsMinStayViolated(roomTypeID, checkIn, checkOut, ignoreRules) ||
		e.IsMaxStayViolated(roomTypeID, checkIn, checkOut, ignoreRules) ||
		e.IsCheckInNotAllowed(roomTypeID, checkIn, ignoreRules) ||
		e.IsCheckOutNotAllowed(roomTypeID, checkOut, ignoreRules) ||
		e.IsStayInNotAllowed(roomTypeID, checkIn, checkOut, ignoreRules)
}

// UnavailableRoomIDs lists the rooms that cannot host the stay. A violated
// composite rule blocks the whole room type; otherwise only rooms with a
// not-stay-in override on some occupied night are returned, deduplicated, in
// ascending order.
func (e *Engine) UnavailableRoomIDs(roomTypeID int, checkIn, checkOut time.Time, ignoreRules bool) []int {
	if ignoreRules || !e.has.any() {
		return nil
	}
	if e.IsBookingRulesViolated(roomTypeID, checkIn, checkOut, ignoreRules) {
		ids := append([]int(nil), e.inventory.ListRoomIDs(roomTypeID)...)
		sort.Ints(ids)
		return ids
	}

	seen := make(map[int]struct{})
	eachNight(checkIn, checkOut, func(d time.Time) bool {
		for roomID, rr := range e.resolve(roomTypeID, d).RoomRules {
			if rr.NotStayIn {
				seen[roomID] = struct{}{}
			}
		}
		return false
	})

	if len(seen) == 0 {
		return nil
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// BlockedRoomsCount counts rooms blocked for occupancy on a single date. A
// whole-type block counts every active room; otherwise distinct per-room
// overrides are counted. The two sources are deliberately not reconciled.
func (e *Engine) BlockedRoomsCount(roomTypeID int, date time.Time, ignoreRules bool) int {
	if ignoreRules || !e.has.notStayIn {
		return 0
	}
	active := e.inventory.CountActiveRooms(roomTypeID)
	if active == 0 {
		return 0
	}
	r := e.resolve(roomTypeID, date)
	if r.NotStayIn {
		return active
	}
	count := 0
	for _, rr := range r.RoomRules {
		if rr.NotStayIn {
			count++
		}
	}
	return count
}
