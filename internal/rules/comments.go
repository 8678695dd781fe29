package rules

import (
	"time"

	"hotel_rules/internal/domain"
)

// StayInComments expands every not-stay-in custom rule for the room type into
// a per-room, per-date comment map keyed by "2006-01-02" date strings, for
// calendar annotation. A rule scoped to room 0 fans out to every id in
// roomIDs. When period is non-nil, rules whose range does not intersect it
// are skipped (the rule still expands over its own full range).
func (e *Engine) StayInComments(roomTypeID int, roomIDs []int, period *domain.DatePeriod) map[int]map[string]string {
	result := make(map[int]map[string]string)

	add := func(roomID int, date, comment string) {
		byDate, ok := result[roomID]
		if !ok {
			byDate = make(map[string]string)
			result[roomID] = byDate
		}
		byDate[date] = joinComments(byDate[date], comment)
	}

	for _, list := range e.customRuleLists(roomTypeID) {
		for _, cr := range list {
			if !cr.notStayIn {
				continue
			}
			if period != nil && !cr.period.Intersects(*period) {
				continue
			}
			eachDayInclusive(cr.period.From, cr.period.To, func(d time.Time) {
				date := d.Format("2006-01-02")
				if cr.roomID == 0 {
					for _, id := range roomIDs {
						add(id, date, cr.comment)
					}
				} else {
					add(cr.roomID, date, cr.comment)
				}
			})
		}
	}
	return result
}

// StayInRulesForExport lists raw not-stay-in custom rules for administrative
// export. requestedRoomID 0 matches any room; a rule scoped to room 0 matches
// any request.
func (e *Engine) StayInRulesForExport(roomTypeID, requestedRoomID int) []domain.StayInRuleExport {
	var result []domain.StayInRuleExport
	for _, list := range e.customRuleLists(roomTypeID) {
		for _, cr := range list {
			if !cr.notStayIn {
				continue
			}
			if requestedRoomID != 0 && cr.roomID != 0 && cr.roomID != requestedRoomID {
				continue
			}
			result = append(result, domain.StayInRuleExport{
				RoomTypeID: roomTypeID,
				RoomID:     cr.roomID,
				StartDate:  cr.period.From,
				EndDate:    cr.period.To,
				Comment:    cr.comment,
			})
		}
	}
	return result
}
