// The warmer pre-computes booking-check responses for upcoming stays so the
// API serves them from redis. Run it after configuration changes or on a
// schedule; it is safe to run concurrently with the API.
package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_rules/internal/adapters/observability"
	redisad "hotel_rules/internal/adapters/redis"
	"hotel_rules/internal/app"
	"hotel_rules/internal/shared"
	mysqlrepo "hotel_rules/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.Workers).
		Int("days", cfg.WarmDays).
		Msg("warmer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	inventory, err := repo.LoadInventory(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("loading inventory failed")
	}
	engine, err := app.LoadEngine(ctx, repo, inventory)
	if err != nil {
		log.Fatal().Err(err).Msg("loading rule configuration failed")
	}
	roomTypeIDs, err := repo.ListRoomTypeIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing room types failed")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewAvailabilityService(engine, cache, cfg.CacheTTL)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	today := time.Now().UTC().Truncate(24 * time.Hour)
	warmed := 0
	for _, roomTypeID := range roomTypeIDs {
		for day := 0; day < cfg.WarmDays; day++ {
			checkIn := today.AddDate(0, 0, day)
			checkOut := checkIn.AddDate(0, 0, 1)

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			warmed++
			go func(roomTypeID int, checkIn, checkOut time.Time) {
				defer wg.Done()
				defer sem.Release(1)

				if _, err := svc.CheckBooking(ctx, roomTypeID, checkIn, checkOut, false); err != nil {
					log.Warn().
						Int("room_type", roomTypeID).
						Time("check_in", checkIn).
						Err(err).
						Msg("warm failed")
				}
			}(roomTypeID, checkIn, checkOut)
		}
	}

	wg.Wait()
	log.Info().Int("stays", warmed).Msg("warmup completed")
}
