package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devcrm/crm-service/internal/api/i18n"
)

const readinessTimeout = 3 * time.Second

// HealthHandler serves the liveness probe at GET /api/health.
// Returns 200 immediately with a message in the caller's language.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

type livenessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	tag := i18n.Negotiate(c.Request().Header.Get("Accept-Language"))
	return c.JSON(http.StatusOK, livenessResponse{
		Status:  "ok",
		Message: i18n.Text(tag, i18n.KeyRunning),
	})
}

// Dependency is a named backing service the readiness probe pings.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

// MongoDependency pings the database with a server round trip.
func MongoDependency(db *mongo.Database) Dependency {
	return Dependency{Name: "mongodb", Ping: func(ctx context.Context) error {
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}}
}

// RedisDependency pings the Redis server.
func RedisDependency(rdb *redis.Client) Dependency {
	return Dependency{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// HealthDependenciesHandler serves the readiness probe at GET /api/health/ready.
// Every dependency must answer before the service is declared ready.
type HealthDependenciesHandler struct {
	deps []Dependency
}

func NewHealthDependenciesHandler(deps ...Dependency) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: deps}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true

	for _, d := range h.deps {
		if err := d.Ping(ctx); err != nil {
			deps[d.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[d.Name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}

// BuildInfo describes the running application for GET /api/info.
type BuildInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Environment string   `json:"environment"`
	Languages   []string `json:"languages"`
}

// InfoHandler handles GET /api/info.
type InfoHandler struct {
	info BuildInfo
}

func NewInfoHandler(info BuildInfo) *InfoHandler {
	if info.Languages == nil {
		for _, t := range i18n.Supported {
			info.Languages = append(info.Languages, t.String())
		}
		sort.Strings(info.Languages)
	}
	return &InfoHandler{info: info}
}

func (h *InfoHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, h.info)
}
