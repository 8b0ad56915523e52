package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-ops/internal/app"
	"github.com/jwalitptl/hospital-ops/internal/config"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
	"github.com/jwalitptl/hospital-ops/internal/seed"
	"github.com/jwalitptl/hospital-ops/internal/service/appointment"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "hospital-ops",
		Short:        "Hospital operations API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yml")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(slotsCmd(&configPath))
	rootCmd.AddCommand(queueCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func slotsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print a doctor's slot grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctorID, _ := cmd.Flags().GetString("doctor")
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format(model.DateLayout)
			}

			svc, err := offlineAppointments(*configPath)
			if err != nil {
				return err
			}
			grid, err := svc.GetSlotGrid(cmd.Context(), doctorID, date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) %s\n", grid.DoctorName, grid.Department, grid.Date)
			if len(grid.Slots) == 0 {
				fmt.Fprintln(out, "no slots")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "START\tEND\tSTATE\tAPPOINTMENT")
			for _, s := range grid.Slots {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Start, s.End, s.State, s.AppointmentRef)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("doctor", "", "doctor id")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD), defaults to today")
	_ = cmd.MarkFlagRequired("doctor")
	return cmd
}

func queueCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Print the department queues for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			department, _ := cmd.Flags().GetString("department")
			if date == "" {
				date = time.Now().Format(model.DateLayout)
			}

			svc, err := offlineAppointments(*configPath)
			if err != nil {
				return err
			}
			queues, err := svc.Queue(cmd.Context(), date, department)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DEPARTMENT\tTOKEN\tPATIENT\tSTART\tSTATUS\tWAIT(MIN)")
			for _, q := range queues {
				for _, e := range q.Entries {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\n",
						q.Department, e.TokenNumber, e.Appointment.PatientName, e.Appointment.StartTime, e.Appointment.Status, e.EstimatedWaitMinutes)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("date", "", "date (YYYY-MM-DD), defaults to today")
	cmd.Flags().String("department", "", "limit to one department")
	return cmd
}

// offlineAppointments builds the scheduling service over the mock data
// without the broker or HTTP stack.
func offlineAppointments(configPath string) (*appointment.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	ds, err := seed.Load(cfg.Data.MockDataPath, time.Now())
	if err != nil {
		return nil, err
	}
	store := memory.NewStore(ds)
	return appointment.NewService(store.Appointments, store.Schedules, appointment.Config{
		RejectDoubleBooking: cfg.Scheduling.RejectDoubleBooking,
		SlotCacheTTL:        cfg.Scheduling.SlotCacheTTL,
	}, metrics.NewMetrics(app.MetricsNamespace, prometheus.NewRegistry()), logger.Nop()), nil
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	zlog.Logger = log.Zerolog()
	if logger.ParseLevel(cfg.Log.Level) != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.DemoMode {
		log.Warn("demo mode enabled: requests are not authenticated")
	}

	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error(err, "failed to close application")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      application.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}
