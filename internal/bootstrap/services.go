package bootstrap

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/shiftwork/scheduling-service/config"
	"github.com/shiftwork/scheduling-service/internal/adapters/dataservice"
	"github.com/shiftwork/scheduling-service/internal/core"
	"github.com/shiftwork/scheduling-service/internal/data"
	"github.com/shiftwork/scheduling-service/internal/domain/circuit"
	"github.com/shiftwork/scheduling-service/internal/domain/rules"
	httpx "github.com/shiftwork/scheduling-service/internal/http"
	"github.com/shiftwork/scheduling-service/internal/service"
)

// ServiceDeps are the shared dependencies the service graph is built from.
type ServiceDeps struct {
	Config      config.AppConfig
	Scheduling  config.SchedulingConfig
	DB          *sql.DB
	RedisClient *redis.Client
	Logger      *slog.Logger
}

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Scheduling *service.SchedulingService
	Health     *dataservice.HealthLoop
	Handler    http.Handler
}

// NewServices wires the full graph: repository, data service client with its
// optional redis cache and circuit breaker, the scheduling service, the
// health probe loop, and the HTTP router.
func NewServices(deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo := data.NewScheduleRepo(deps.DB, logger)
	client := dataservice.NewClient(deps.Config.DataServiceURL, logger)

	var roster core.RosterClient = client
	if deps.RedisClient != nil {
		roster = dataservice.NewCachedRosterClient(roster, deps.RedisClient, logger)
	}

	breaker := circuit.New(circuit.Config{
		FailureThreshold: deps.Scheduling.CircuitBreaker.FailureThreshold,
		Cooldown:         deps.Scheduling.CircuitBreaker.CooldownDuration(),
	})
	roster = dataservice.NewBreakerClient(roster, breaker)

	ruleList := rules.Build(rules.Config{
		MinDayOffPerWeek:      deps.Scheduling.MinDayOffPerWeek,
		MaxDayOffPerWeek:      deps.Scheduling.MaxDayOffPerWeek,
		NoMorningAfterEvening: deps.Scheduling.NoMorningAfterEvening,
		MaxDailyShiftDiff:     deps.Scheduling.MaxDailyShiftDiff,
	})

	svc := service.NewSchedulingService(repo, roster, ruleList, deps.Scheduling.Location(logger), logger)

	health := dataservice.NewHealthLoop(
		client,
		breaker,
		svc,
		deps.Scheduling.HealthCheck.Interval(),
		deps.Scheduling.HealthCheck.Timeout(),
		logger,
	)

	handlers := httpx.NewScheduleHandlers(svc, logger)

	return ServiceContainer{
		Scheduling: svc,
		Health:     health,
		Handler:    httpx.NewRouter(handlers, logger),
	}
}
