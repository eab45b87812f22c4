package services

import (
	"context"
	"sort"
	"time"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const checkTimeout = 3 * time.Second

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthCheck struct {
	name string
	// critical dependencies report DOWN when they fail; others degrade.
	critical bool
	ping     func(ctx context.Context) error
}

// HealthService aggregates dependency checks. The worst component wins.
type HealthService struct {
	checks    []healthCheck
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

func NewHealthService(version string) *HealthService {
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

// AddCheck registers a dependency under name.
func (h *HealthService) AddCheck(name string, critical bool, p Pinger) *HealthService {
	h.checks = append(h.checks, healthCheck{name: name, critical: critical, ping: p.Ping})
	return h
}

// AddRedisCheck registers a Redis client under types.ComponentRedis.
func (h *HealthService) AddRedisCheck(client redis.UniversalClient, critical bool) *HealthService {
	h.checks = append(h.checks, healthCheck{
		name:     types.ComponentRedis,
		critical: critical,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	})
	return h
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent, len(h.checks))
	overallStatus := types.HealthStatusUp

	for _, check := range h.checks {
		comp := h.run(ctx, check)
		components[check.name] = comp

		switch comp.Status {
		case types.HealthStatusDown:
			overallStatus = types.HealthStatusDown
		case types.HealthStatusDegraded:
			if overallStatus != types.HealthStatusDown {
				overallStatus = types.HealthStatusDegraded
			}
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

// Components lists registered check names, sorted.
func (h *HealthService) Components() []string {
	names := make([]string, 0, len(h.checks))
	for _, c := range h.checks {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

func (h *HealthService) run(ctx context.Context, check healthCheck) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := check.ping(ctx); err != nil {
		h.log.Errorw("Health check failed", "component", check.name, "error", err)
		status := types.HealthStatusDegraded
		if check.critical {
			status = types.HealthStatusDown
		}
		return types.HealthComponent{
			Status:  status,
			Details: check.name + " connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
