package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/alerting"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/events"
	v1 "github.com/dmehra2102/prod-golang-projects/healthtrack/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type stores struct {
	users         domain.UserRepository
	metrics       metric.Repository
	symptoms      symptom.Repository
	appointments  appointment.Repository
	notifications notification.Repository
	audit         service.AuditRepository
	close         func() error
}

func openStores(cfg *config.Config, log *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return &stores{
			users:         memory.NewUserRepository(),
			metrics:       memory.NewMetricRepository(),
			symptoms:      memory.NewSymptomRepository(),
			appointments:  memory.NewAppointmentRepository(),
			notifications: memory.NewNotificationRepository(),
			audit:         memory.NewAuditRepository(),
			close:         func() error { return nil },
		}, nil

	case "postgres":
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return &stores{
			users:         postgres.NewUserRepository(db),
			metrics:       postgres.NewMetricRepository(db),
			symptoms:      postgres.NewSymptomRepository(db),
			appointments:  postgres.NewAppointmentRepository(db),
			notifications: postgres.NewNotificationRepository(db),
			audit:         postgres.NewAuditRepository(db),
			close:         func() error { return database.Close(db) },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

type publisher interface {
	notification.Publisher
	Close() error
}

// app owns everything that has to be closed on the way out.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
	stores    *stores
	publisher publisher
	engine    *alerting.Engine
	auditSvc  *service.AuditService
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector("healthtrack", registry)

	st, err := openStores(cfg, log)
	if err != nil {
		return nil, err
	}

	var pub publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		pub = events.NewKafkaPublisher(cfg.Kafka, log)
	}

	loc, err := cfg.Alerting.Location()
	if err != nil {
		return nil, err
	}
	opts := alerting.DefaultOptions()
	opts.Location = loc
	opts.DayOfHour = cfg.Alerting.DayOfHour
	opts.Workers = cfg.Alerting.Workers
	opts.Interval = cfg.Scheduler.Interval
	opts.RunOnStart = cfg.Scheduler.RunOnStart

	engine := alerting.New(alerting.Dependencies{
		Users:         st.users,
		Metrics:       st.metrics,
		Symptoms:      st.symptoms,
		Appointments:  st.appointments,
		Notifications: st.notifications,
		Publisher:     pub,
		Collector:     collector,
		Log:           log,
	}, opts)

	return &app{
		cfg:       cfg,
		log:       log,
		registry:  registry,
		collector: collector,
		stores:    st,
		publisher: pub,
		engine:    engine,
		auditSvc:  service.NewAuditService(st.audit, collector, log),
	}, nil
}

func (a *app) handler() *v1.Handler {
	return v1.NewHandler(v1.Services{
		Users:         service.NewUserService(a.stores.users, a.auditSvc, a.log),
		Metrics:       service.NewMetricService(a.stores.metrics, a.stores.users, a.engine, a.auditSvc, a.log),
		Symptoms:      service.NewSymptomService(a.stores.symptoms, a.stores.users, a.engine, a.auditSvc, a.log),
		Appointments:  service.NewAppointmentService(a.stores.appointments, a.stores.users, a.engine, a.auditSvc, a.log),
		Notifications: service.NewNotificationService(a.stores.notifications, a.stores.users, a.auditSvc, a.log),
		Reminders:     a.engine,
	}, a.log)
}

// close flushes audit entries before the store goes away.
func (a *app) close(_ context.Context) error {
	a.auditSvc.Shutdown()
	return errors.Join(a.publisher.Close(), a.stores.close())
}
