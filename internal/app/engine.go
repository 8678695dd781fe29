package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"hotel_rules/internal/domain"
	"hotel_rules/internal/rules"
)

// LoadEngine pulls the full rule configuration from a source and constructs
// the engine. Configuration is read once; the engine is rebuilt (in practice,
// the process restarted) whenever it changes.
func LoadEngine(ctx context.Context, src domain.RuleSource, inventory domain.RoomInventory, opts ...rules.Option) (*rules.Engine, error) {
	seasons, err := src.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}
	reservation, err := src.ListReservationRules(ctx)
	if err != nil {
		return nil, err
	}
	buffer, err := src.ListBufferRules(ctx)
	if err != nil {
		return nil, err
	}
	custom, err := src.ListCustomRules(ctx)
	if err != nil {
		return nil, err
	}
	roomTypeIDs, err := src.ListRoomTypeIDs(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("seasons", len(seasons)).
		Int("reservation_rules", len(reservation)).
		Int("buffer_rules", len(buffer)).
		Int("custom_rules", len(custom)).
		Int("room_types", len(roomTypeIDs)).
		Msg("rule configuration loaded")

	return rules.New(rules.Config{
		Seasons:          seasons,
		ReservationRules: reservation,
		BufferRules:      buffer,
		CustomRules:      custom,
		RoomTypeIDs:      roomTypeIDs,
	}, inventory, opts...), nil
}
