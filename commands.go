package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/venue-booking/config"
	"github.com/yeremiapane/venue-booking/database"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/observability"
	"github.com/yeremiapane/venue-booking/realtime"
	"github.com/yeremiapane/venue-booking/report"
	"github.com/yeremiapane/venue-booking/router"
	"github.com/yeremiapane/venue-booking/services"
	"github.com/yeremiapane/venue-booking/session"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
	"gorm.io/gorm"
)

const cleanupInterval = 10 * time.Minute

var (
	cfg *config.Config

	seedTables   bool
	reportDate   string
	reportFormat string
	reportOut    string

	rootCmd = &cobra.Command{
		Use:   "venue",
		Short: "Venue table reservation service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			utils.InitLogger(cfg.LogLevel)
			utils.SetJWTSecret(cfg.JWTSecret)
		},
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, change monitor and websocket hub",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and change-feed triggers",
		RunE:  runMigrate,
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Export the arrival report of one evening",
		RunE:  runReport,
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&seedTables, "seed", false, "seed tables from the floor plan file")

	reportCmd.Flags().StringVar(&reportDate, "date", models.Today(), "report date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "csv", "output format: csv, pdf, png or json")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default report_<date>.<format>, - for stdout)")

	rootCmd.AddCommand(serveCmd, migrateCmd, reportCmd)
}

func openDB() (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	metrics := observability.Default()
	repo := database.NewRepository(db)
	sessions := session.NewManager(repo, metrics)
	hub := realtime.NewHub()

	// Inisialisasi change monitor
	monitor := services.NewChangeMonitor(db, sessions, hub, metrics)
	monitor.Interval = cfg.ChangeMonitorInterval
	monitor.Start()
	defer monitor.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go cleanupExpired(ctx, sessions)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.SetupRouter(router.Deps{
			DB:         db,
			Sessions:   sessions,
			Hub:        hub,
			CORSOrigin: cfg.CORSOrigin,
			RateLimit:  cfg.RateLimit,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cleanupExpired membersihkan blacklist token dan session yang tokennya sudah kedaluwarsa.
func cleanupExpired(ctx context.Context, sessions *session.Manager) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			sweepExpired(sessions, now)
		case <-ctx.Done():
			return
		}
	}
}

func sweepExpired(sessions *session.Manager, now time.Time) {
	if n := utils.CleanupBlacklist(); n > 0 {
		utils.InfoLogger.Debugf("Removed %d expired tokens from blacklist", n)
	}
	sessions.Expire(now)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	if !seedTables {
		return nil
	}

	plan, err := database.LoadFloorPlan(cfg.FloorPlanPath)
	if err != nil {
		return fmt.Errorf("load floor plan %s: %w", cfg.FloorPlanPath, err)
	}
	_, err = database.SeedTables(cmd.Context(), db, plan)
	return err
}

var reportWriters = map[string]func(io.Writer, report.Report) error{
	"csv":  report.WriteCSV,
	"pdf":  report.WritePDF,
	"png":  report.RenderTableBars,
	"json": writeJSON,
}

func writeJSON(w io.Writer, r report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func runReport(cmd *cobra.Command, args []string) error {
	write, ok := reportWriters[reportFormat]
	if !ok {
		return fmt.Errorf("unknown format %q", reportFormat)
	}
	if _, err := models.ParseDate(reportDate); err != nil {
		return fmt.Errorf("invalid --date %q: %w", reportDate, err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	st := store.New(database.NewRepository(db))
	r := st.GenerateReport(cmd.Context(), reportDate)

	out := reportOut
	if out == "" {
		out = r.FileName(reportFormat)
	}
	if out == "-" {
		return write(cmd.OutOrStdout(), r)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := write(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	utils.InfoLogger.Printf("Report for %s written to %s (%d guests, %d%% arrived)", r.Date, out, r.TotalGuests, r.ArrivalRate())
	return nil
}
