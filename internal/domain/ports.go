package domain

import (
	"context"
	"time"
)

// RoomInventory is the room catalog lookup the engine consumes. It is a
// snapshot interface: implementations answer from already-loaded data, so
// engine queries stay pure and error-free.
type RoomInventory interface {
	CountActiveRooms(roomTypeID int) int
	ListRoomIDs(roomTypeID int) []int
}

// RuleSource supplies parsed rule configuration for engine construction.
type RuleSource interface {
	ListSeasons(ctx context.Context) ([]Season, error)
	ListReservationRules(ctx context.Context) ([]ReservationRuleConfig, error)
	ListBufferRules(ctx context.Context) ([]BufferRuleConfig, error)
	ListCustomRules(ctx context.Context) ([]CustomRuleConfig, error)
	ListRoomTypeIDs(ctx context.Context) ([]int, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models

// BookingCheck is the composite answer for one candidate stay.
type BookingCheck struct {
	RoomTypeID         int       `json:"room_type_id"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
	Violated           bool      `json:"violated"`
	CheckInTooEarly    bool      `json:"check_in_too_early"`
	CheckInTooLate     bool      `json:"check_in_too_late"`
	MinStayViolated    bool      `json:"min_stay_violated"`
	MaxStayViolated    bool      `json:"max_stay_violated"`
	CheckInNotAllowed  bool      `json:"check_in_not_allowed"`
	CheckOutNotAllowed bool      `json:"check_out_not_allowed"`
	StayInNotAllowed   bool      `json:"stay_in_not_allowed"`
	MinStay            int       `json:"min_stay"`
	MaxStay            int       `json:"max_stay"`
	MinAdvance         int       `json:"min_advance"`
	MaxAdvance         int       `json:"max_advance"`
	BufferDays         int       `json:"buffer_days"`
	UnavailableRoomIDs []int     `json:"unavailable_room_ids"`
}
