// Package app assembles the application: store, caches, broker, services,
// handlers and background workers, with an explicit New/Close lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-ops/internal/config"
	appointmenthandler "github.com/jwalitptl/hospital-ops/internal/handler/appointment"
	consultationhandler "github.com/jwalitptl/hospital-ops/internal/handler/consultation"
	"github.com/jwalitptl/hospital-ops/internal/handler/health"
	outreachhandler "github.com/jwalitptl/hospital-ops/internal/handler/outreach"
	patienthandler "github.com/jwalitptl/hospital-ops/internal/handler/patient"
	prometheushandler "github.com/jwalitptl/hospital-ops/internal/handler/prometheus"
	recordshandler "github.com/jwalitptl/hospital-ops/internal/handler/records"
	sessionhandler "github.com/jwalitptl/hospital-ops/internal/handler/session"
	"github.com/jwalitptl/hospital-ops/internal/middleware"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/repository/memory"
	"github.com/jwalitptl/hospital-ops/internal/router"
	"github.com/jwalitptl/hospital-ops/internal/seed"
	"github.com/jwalitptl/hospital-ops/internal/service/appointment"
	"github.com/jwalitptl/hospital-ops/internal/service/booking"
	"github.com/jwalitptl/hospital-ops/internal/service/consultation"
	"github.com/jwalitptl/hospital-ops/internal/service/notification"
	"github.com/jwalitptl/hospital-ops/internal/service/outreach"
	"github.com/jwalitptl/hospital-ops/internal/service/patient"
	"github.com/jwalitptl/hospital-ops/internal/service/records"
	"github.com/jwalitptl/hospital-ops/internal/worker"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/messaging"
	"github.com/jwalitptl/hospital-ops/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

const MetricsNamespace = "hospital_ops"

type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Store   *memory.Store
	Metrics *metrics.Metrics
	Broker  messaging.Broker

	Appointments *appointment.Service
	Booking      *booking.Service
	Notifier     notification.Service

	router     *router.Router
	dispatcher *worker.Dispatcher
	queueGauge *worker.QueueGaugeWorker

	cancel       context.CancelFunc
	wg           sync.WaitGroup
	stopDispatch context.CancelFunc
	dispatchWG   sync.WaitGroup
	closeOnce    sync.Once
}

// New loads the mock data and builds every component. Background workers
// start with Start.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	dataset, err := seed.Load(cfg.Data.MockDataPath, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load mock data: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: log,
		Store:  memory.NewStore(dataset),
	}

	promH := prometheushandler.New()
	a.Metrics = metrics.NewMetrics(MetricsNamespace, promH.Registry())

	inProcess := cfg.Redis.URL == ""
	if inProcess {
		a.Broker = messaging.NewMemoryBroker(cfg.Notifications.BufferSize)
		a.dispatcher = worker.NewDispatcher(a.Broker, NewSenders(cfg.Notifications, log),
			worker.DispatcherConfig{SendTimeout: cfg.Notifications.SendTimeout}, log, a.Metrics)
	} else {
		a.Broker, err = redis.NewRedisBroker(RedisBrokerConfig(cfg.Redis), log.Zerolog())
		if err != nil {
			return nil, err
		}
	}

	validate := validator.New()

	a.Appointments = appointment.NewService(a.Store.Appointments, a.Store.Schedules, appointment.Config{
		RejectDoubleBooking: cfg.Scheduling.RejectDoubleBooking,
		SlotCacheTTL:        cfg.Scheduling.SlotCacheTTL,
	}, a.Metrics, log)
	a.Notifier = notification.NewService(a.Broker, cfg.Notifications.PublishTimeout, log, a.Metrics)
	a.Booking = booking.NewService(a.Appointments, a.Store.Patients, a.Notifier, validate, a.Metrics, log)
	a.queueGauge = worker.NewQueueGaugeWorker(a.Appointments, cfg.Scheduling.QueueGaugeInterval, log)

	patients := patient.NewService(a.Store.Patients)
	consultations := consultation.NewService(a.Store.Consultations, a.Store.Patients, a.Store.Schedules, validate, a.Metrics, log)
	outreachSvc := outreach.NewService(a.Store.Campaigns, a.Store.Volunteers, a.Store.Programs, validate, a.Metrics, log)

	checks := map[string]health.Check{}
	if p, ok := a.Broker.(messaging.Pinger); ok {
		checks["broker"] = p.Ping
	}

	auth := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		DemoMode: cfg.Auth.DemoMode,
		Claims: middleware.ClaimMapping{
			UserID:  cfg.Auth.Claims.UserID,
			OrgID:   cfg.Auth.Claims.OrgID,
			OrgRole: cfg.Auth.Claims.OrgRole,
			Email:   cfg.Auth.Claims.Email,
		},
	})

	a.router = router.NewRouter(auth,
		[]router.Handler{health.NewHandler(checks), promH},
		[]router.Handler{
			sessionhandler.NewHandler(),
			appointmenthandler.NewHandler(a.Appointments, a.Booking, validate),
			patienthandler.NewHandler(patients),
			consultationhandler.NewHandler(consultations),
			outreachhandler.NewHandler(outreachSvc),
			&recordshandler.Handler{
				Beds:        records.NewLister[model.Bed](a.Store.Beds),
				Documents:   records.NewLister[model.Document](a.Store.Documents),
				Tasks:       records.NewLister[model.Task](a.Store.Tasks),
				Vitals:      records.NewLister[model.VitalsRecord](a.Store.Vitals),
				StaffLeaves: records.NewLister[model.StaffLeave](a.Store.StaffLeaves),
			},
		},
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			CORS: router.CORSConfig{
				AllowedOrigins:   cfg.CORS.AllowedOrigins,
				AllowedMethods:   cfg.CORS.AllowedMethods,
				AllowedHeaders:   cfg.CORS.AllowedHeaders,
				AllowCredentials: cfg.CORS.AllowCredentials,
			},
		},
		a.Metrics,
		log,
	)
	a.router.Setup()

	return a, nil
}

// RedisBrokerConfig maps the redis section onto the broker's config.
func RedisBrokerConfig(cfg config.RedisConfig) redis.Config {
	return redis.Config{
		URL:              cfg.URL,
		MaxRetries:       cfg.MaxRetries,
		RetryBackoff:     cfg.RetryBackoff,
		PoolSize:         cfg.PoolSize,
		MinIdleConns:     cfg.MinIdleConns,
		FailureThreshold: cfg.FailureThreshold,
		OpenTimeout:      cfg.OpenTimeout,
	}
}

// Start launches the background workers. With Redis configured the
// dispatcher runs in cmd/worker instead. The in-process dispatcher outlives
// ctx and stops in Close, once the broker has no more buffered messages.
func (a *App) Start(ctx context.Context) {
	if a.dispatcher != nil {
		var dctx context.Context
		dctx, a.stopDispatch = context.WithCancel(context.WithoutCancel(ctx))
		a.dispatchWG.Add(1)
		go func() {
			defer a.dispatchWG.Done()
			if err := a.dispatcher.Start(dctx); err != nil {
				a.Logger.Error(err, "Notification dispatcher stopped")
			}
		}()
	}

	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.queueGauge.Start(ctx)
	}()
}

func (a *App) Handler() http.Handler {
	return a.router.Engine()
}

// Close waits for pending publishes, closes the broker and lets the
// in-process dispatcher deliver what is still buffered before the workers
// stop. It is safe to call more than once.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.Notifier.Close()
		// closing the subscription ends the dispatcher after its buffer is read
		err = a.Broker.Close()
		a.dispatchWG.Wait()
		if a.stopDispatch != nil {
			a.stopDispatch()
		}
		if a.cancel != nil {
			a.cancel()
		}
		a.wg.Wait()
	})
	return err
}
