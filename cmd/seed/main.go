package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/telecare/clinic-dashboard/backend/internal/adapters/gateway"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/clients/postgres"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/observability"
	"github.com/telecare/clinic-dashboard/backend/pkg/config"
)

// seed inserts a small demo roster and a day of appointments through
// the configured gateway, so a fresh deployment has data to click
// through.
func main() {
	date := flag.String("date", time.Now().Format("2006-01-02"), "date to schedule the demo appointments on")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	if cfg.Gateway.Mode == "mock" {
		log.Fatal().Msg("mock gateway keeps data in process memory, nothing to seed")
	}

	var pgClient *postgres.Client
	if cfg.Gateway.Mode == "postgres" {
		pgClient, err = postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
	}

	gw, err := gateway.NewGateway(&cfg.Gateway, gateway.Deps{Postgres: pgClient})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gateway")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	patients := []entities.Patient{
		{Name: "Alice Mwangi", Email: "alice.mwangi@example.com", Phone: "+254700000001"},
		{Name: "Brian Otieno", Email: "brian.otieno@example.com", Phone: "+254700000002"},
		{Name: "Carol Wanjiru", Email: "carol.wanjiru@example.com", Phone: "+254700000003"},
	}

	times := []string{"09:00", "10:30", "14:00"}

	for i, p := range patients {
		inserted, err := gw.Insert(ctx, gateway.TablePatients, p)
		if err != nil {
			log.Error().Err(err).Str("name", p.Name).Msg("failed to insert patient")
			os.Exit(1)
		}

		var rows []entities.Patient
		if err := json.Unmarshal(inserted, &rows); err != nil || len(rows) == 0 {
			log.Error().Err(err).Str("name", p.Name).Msg("unexpected insert response")
			os.Exit(1)
		}
		log.Info().Int64("id", rows[0].ID).Str("name", rows[0].Name).Msg("patient seeded")

		appointment := entities.Appointment{
			PatientID:   rows[0].ID,
			PatientName: rows[0].Name,
			Date:        *date,
			Time:        times[i%len(times)],
		}
		if _, err := gw.Insert(ctx, gateway.TableAppointments, appointment); err != nil {
			log.Error().Err(err).Str("name", p.Name).Msg("failed to insert appointment")
			os.Exit(1)
		}
	}

	log.Info().Str("date", *date).Msg("seed complete")
}
