package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pershin-daniil/SchoolAdmin/internal/calendar"
	"github.com/pershin-daniil/SchoolAdmin/internal/rest"
	"github.com/pershin-daniil/SchoolAdmin/internal/telegram"
	"github.com/pershin-daniil/SchoolAdmin/pkg/config"
	"github.com/pershin-daniil/SchoolAdmin/pkg/logger"
	"github.com/pershin-daniil/SchoolAdmin/pkg/notifier"
	"github.com/pershin-daniil/SchoolAdmin/pkg/pgstore"
	"github.com/pershin-daniil/SchoolAdmin/pkg/service"
	"github.com/pershin-daniil/SchoolAdmin/pkg/worker"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/option"
)

func main() {
	cfg := config.New()
	log := logger.NewLogger(cfg.LogLevel)

	root := &cobra.Command{
		Use:           "schooladmin",
		Short:         "School events administration dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(cfg, log), migrateCmd(cfg, log), hashPasswordCmd())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and the event announcer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cfg, log)
		},
	}
}

func serve(cfg *config.Config, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := pgstore.NewStore(ctx, log, cfg.PgDSN)
	if err != nil {
		return fmt.Errorf("err connecting to postgres: %w", err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			log.Warnf("err closing store: %v", err)
		}
	}()
	if err = store.Migrate(migrate.Up); err != nil {
		return err
	}

	var notify service.Notifier = notifier.NewDummyNotifier(log)
	if cfg.TgToken != "" && cfg.TgChatID != 0 {
		bot, err := telegram.NewBot(cfg.TgToken)
		if err != nil {
			return err
		}
		notify = telegram.NewNotifier(log, bot, cfg.TgChatID)
	}

	var mirror service.Mirror
	if cfg.GoogleCredentials != "" && cfg.GoogleCalendarID != "" {
		gcal, err := calendar.New(ctx, log, cfg.GoogleCalendarID, option.WithCredentialsFile(cfg.GoogleCredentials))
		if err != nil {
			return err
		}
		mirror = gcal
	}

	app := service.NewScheduleService(log, store, notify, mirror)
	actions := service.NewActions(log, app)
	auth := rest.Auth{PasswordHash: cfg.AdminPasswordHash, Secret: []byte(cfg.JWTSecret)}
	server := rest.NewServer(log, app, actions, auth, cfg.Address, cfg.Version)
	announcer := worker.New(log, store, notify, cfg.AnnounceLead)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
		<-sigCh
		log.Info("Received signal, shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := announcer.Run(ctx, cfg.AnnounceSchedule); err != nil {
			errCh <- err
			cancel()
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			errCh <- err
			cancel()
		}
	}()
	wg.Wait()
	close(errCh)
	log.Info("Server stopped")
	return <-errCh
}

func migrateCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := migrate.Up
			if args[0] == "down" {
				direction = migrate.Down
			}
			store, err := pgstore.NewStore(cmd.Context(), log, cfg.PgDSN)
			if err != nil {
				return fmt.Errorf("err connecting to postgres: %w", err)
			}
			defer store.Close()
			return store.Migrate(direction)
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			cmd.Println(string(hash))
			return nil
		},
	}
}
