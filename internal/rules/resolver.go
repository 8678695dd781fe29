package rules

import (
	"time"

	"hotel_rules/internal/adapters/observability"
	"hotel_rules/internal/domain"
)

// Resolve returns the fully merged rule record for one (date, room type)
// pair. The caller gets an independent copy of the memoized record.
func (e *Engine) Resolve(roomTypeID int, date time.Time) domain.DateRules {
	return e.resolve(roomTypeID, date).Clone()
}

// resolve memoizes indefinitely: configuration is immutable for the engine's
// lifetime, so a record never needs re-derivation and the adjust hook runs at
// most once per key. Concurrent first resolution of the same key may compute
// twice; the first stored value wins.
func (e *Engine) resolve(roomTypeID int, date time.Time) domain.DateRules {
	date = dateOnly(date)
	key := cacheKey{date: date.Format(dateKeyLayout), roomType: roomTypeID}

	e.mu.RLock()
	r, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		observability.ObserveCache("rules", "hit")
		return r
	}
	observability.ObserveCache("rules", "miss")

	r = e.buildDateRules(roomTypeID, date)
	if e.hooks.AdjustDateRules != nil {
		r = e.hooks.AdjustDateRules(r, roomTypeID, date)
	}

	e.mu.Lock()
	if prev, exists := e.cache[key]; exists {
		r = prev
	} else {
		e.cache[key] = r
		observability.ObserveCache("rules", "set")
	}
	e.mu.Unlock()
	return r
}

func (e *Engine) buildDateRules(roomTypeID int, date time.Time) domain.DateRules {
	picked := make(map[domain.RuleKind]ruleValue)

	// Reservation rules: first value per kind wins across this double loop,
	// so the room-type-specific entry of the earliest matching season beats
	// that season's wildcard entry, which beats any later season.
	for _, season := range e.seasons {
		if !season.ContainsDate(date) {
			continue
		}
		e.pickRules(picked, season.ID, roomTypeID)
		if roomTypeID > 0 {
			e.pickRules(picked, season.ID, 0)
		}
	}

	r := domain.DateRules{
		MinAdvance: 0,
		MaxAdvance: 0,
		MinStay:    1,
		MaxStay:    0,
		BufferDays: 0,
	}
	if v, ok := picked[domain.KindCheckInDays]; ok {
		r.CheckInDays = v.days.Clone()
	} else {
		r.CheckInDays = domain.AllWeekdays()
	}
	if v, ok := picked[domain.KindCheckOutDays]; ok {
		r.CheckOutDays = v.days.Clone()
	} else {
		r.CheckOutDays = domain.AllWeekdays()
	}
	if v, ok := picked[domain.KindMinAdvance]; ok {
		r.MinAdvance = v.num
	}
	if v, ok := picked[domain.KindMaxAdvance]; ok {
		r.MaxAdvance = v.num
	}
	if v, ok := picked[domain.KindMinStay]; ok {
		r.MinStay = v.num
	}
	if v, ok := picked[domain.KindMaxStay]; ok {
		r.MaxStay = v.num
	}
	if v, ok := picked[domain.KindBufferDays]; ok {
		r.BufferDays = v.num
	}

	// Custom rules merge instead of overriding: flags OR together and
	// comments concatenate in configuration order, wildcard room type first.
	dateKey := date.Format(dateKeyLayout)
	for _, list := range e.customRuleLists(roomTypeID) {
		for _, cr := range list {
			if dateKey < cr.from || dateKey > cr.to {
				continue
			}
			if cr.roomID > 0 {
				if r.RoomRules == nil {
					r.RoomRules = make(map[int]domain.RoomDateRules)
				}
				rr := r.RoomRules[cr.roomID]
				rr.NotCheckIn = rr.NotCheckIn || cr.notCheckIn
				rr.NotCheckOut = rr.NotCheckOut || cr.notCheckOut
				rr.NotStayIn = rr.NotStayIn || cr.notStayIn
				rr.Comment = joinComments(rr.Comment, cr.comment)
				r.RoomRules[cr.roomID] = rr
			} else {
				r.NotCheckIn = r.NotCheckIn || cr.notCheckIn
				r.NotCheckOut = r.NotCheckOut || cr.notCheckOut
				r.NotStayIn = r.NotStayIn || cr.notStayIn
				r.Comment = joinComments(r.Comment, cr.comment)
			}
		}
	}

	wd := date.Weekday()
	r.InCheckInDays = r.CheckInDays.Contains(wd)
	r.InCheckOutDays = r.CheckOutDays.Contains(wd)
	return r
}

func (e *Engine) pickRules(picked map[domain.RuleKind]ruleValue, seasonID, roomTypeID int) {
	for kind, v := range e.reservation[seasonID][roomTypeID] {
		if _, ok := picked[kind]; !ok {
			picked[kind] = v
		}
	}
}

func joinComments(acc, c string) string {
	if acc == "" {
		return c
	}
	return acc + ", " + c
}
