package mysql

// Seasons keep their date ranges in a child table so a season can cover
// several disjoint periods.
const listSeasonsSQL = `
SELECT id, name
FROM seasons
ORDER BY priority, id
`

const listSeasonPeriodsSQL = `
SELECT season_id, date_from, date_to
FROM season_periods
ORDER BY season_id, date_from
`

// season_ids / room_type_ids / days are JSON arrays of ints; the loader
// decodes them and the engine discards entries it considers malformed.
const listReservationRulesSQL = `
SELECT kind, season_ids, room_type_ids, days, value
FROM reservation_rules
ORDER BY id
`

const listBufferRulesSQL = `
SELECT season_ids, room_type_ids, buffer_days
FROM buffer_rules
ORDER BY id
`

// restrictions is a JSON array of strings ("check-in"|"check-out"|"stay-in").
// Dates stay raw strings: unparseable ones are the engine's to drop.
const listCustomRulesSQL = `
SELECT room_type_id, room_id, date_from, date_to, restrictions, comment
FROM custom_rules
ORDER BY id
`

const listRoomTypeIDsSQL = `
SELECT id
FROM room_types
WHERE active = 1
ORDER BY id
`

const listActiveRoomsSQL = `
SELECT id, room_type_id
FROM rooms
WHERE active = 1
ORDER BY room_type_id, id
`
