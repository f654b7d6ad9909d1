package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/devcrm/crm-service/docs"
	"github.com/devcrm/crm-service/internal/api/handler"
	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/api/middleware"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
	"github.com/devcrm/crm-service/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth       ports.AuthService
	Customers  ports.CustomerService
	Roles      ports.RoleService
	Privileges ports.PrivilegeService
	Users      ports.UserService

	Tokens    middleware.TokenVerifier
	Readiness []handlers.Dependency
	Info      handlers.BuildInfo
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(metrics.Middleware())

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Readiness...)
	infoHandler := handlers.NewInfoHandler(deps.Info)

	e.GET("/api/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/api/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/api/info", infoHandler.Info)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authenticated := api.Group("", middleware.Auth(deps.Tokens, deps.Auth))
	admin := middleware.RequireAuthority(domain.RoleAdmin)

	// --- Customers: any authenticated caller ---
	customerHandler := handler.NewCustomerHandler(deps.Customers)
	customers := authenticated.Group("/customers")
	customers.GET("", customerHandler.List)
	customers.GET("/:id", customerHandler.Get)
	customers.POST("", customerHandler.Create)
	customers.PUT("/:id", customerHandler.Update)
	customers.PATCH("/:id", customerHandler.Patch)
	customers.DELETE("/:id", customerHandler.Delete)

	// --- Roles: administrators; privilege membership by privilege ---
	readPrivileges := middleware.RequireAuthority(
		domain.PrivilegeSystemAdmin, domain.PrivilegeReadRoles, domain.PrivilegeManageRolePrivileges)
	writeRolePrivileges := middleware.RequireAuthority(
		domain.PrivilegeSystemAdmin, domain.PrivilegeManageRolePrivileges)

	roleHandler := handler.NewRoleHandler(deps.Roles)
	roles := authenticated.Group("/roles")
	roles.GET("", roleHandler.List, admin)
	roles.GET("/name/:name", roleHandler.GetByName, admin)
	roles.GET("/:id", roleHandler.Get, admin)
	roles.POST("", roleHandler.Create, admin)
	roles.PUT("/:id", roleHandler.Update, admin)
	roles.PATCH("/:id", roleHandler.Patch, admin)
	roles.DELETE("/:id", roleHandler.Delete, admin)
	roles.GET("/:id/privileges", roleHandler.Privileges, readPrivileges)
	roles.PUT("/:id/privileges", roleHandler.SetPrivileges, writeRolePrivileges)
	roles.POST("/:id/privileges/:privilegeId", roleHandler.AddPrivilege, writeRolePrivileges)
	roles.DELETE("/:id/privileges/:privilegeId", roleHandler.RemovePrivilege, writeRolePrivileges)

	// --- Privileges ---
	writePrivileges := middleware.RequireAuthority(domain.PrivilegeSystemAdmin)

	privilegeHandler := handler.NewPrivilegeHandler(deps.Privileges)
	privileges := authenticated.Group("/privileges")
	privileges.GET("", privilegeHandler.List, readPrivileges)
	privileges.GET("/categories", privilegeHandler.Categories, readPrivileges)
	privileges.GET("/category/:category", privilegeHandler.ListByCategory, readPrivileges)
	privileges.GET("/name/:name", privilegeHandler.GetByName, readPrivileges)
	privileges.GET("/:id", privilegeHandler.Get, readPrivileges)
	privileges.POST("", privilegeHandler.Create, writePrivileges)
	privileges.PUT("/:id", privilegeHandler.Update, writePrivileges)
	privileges.PATCH("/:id", privilegeHandler.Patch, writePrivileges)
	privileges.DELETE("/:id", privilegeHandler.Delete, writePrivileges)

	// --- Users: administrators; preferences checked by the service ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := authenticated.Group("/users")
	users.GET("", userHandler.List, admin)
	users.GET("/:id", userHandler.Get, admin)
	users.PATCH("/:id", userHandler.UpdateProfile, admin)
	users.DELETE("/:id", userHandler.Delete, admin)
	users.PUT("/:id/role", userHandler.UpdateRole, admin)
	users.PATCH("/:id/preferences", userHandler.UpdatePreferences)

	return e
}
