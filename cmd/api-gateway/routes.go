package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/handler"
	"github.com/highroller/payroll-api/internal/middleware"
	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/repository"
	"github.com/highroller/payroll-api/internal/service"
	"github.com/highroller/payroll-api/pkg/config"
	"github.com/highroller/payroll-api/pkg/geocoding"
	"github.com/highroller/payroll-api/pkg/logger"
	corsmiddleware "github.com/highroller/payroll-api/pkg/middleware/cors"
	reqidmiddleware "github.com/highroller/payroll-api/pkg/middleware/requestid"
	"github.com/highroller/payroll-api/pkg/validation"
)

func newRouter(cfg *config.Config, catalog config.Catalog, db *sqlx.DB, rdb *redis.Client, logr *zap.Logger) (*gin.Engine, error) {
	metrics := service.NewMetricsService()
	validate := validation.New()

	users := repository.NewUserRepository(db)
	employees := repository.NewEmployeeRepository(db)
	requests := repository.NewModifyRequestRepository(db)
	periods := repository.NewSalaryPeriodRepository(db)
	tickets := repository.NewTicketRepository(db)
	sessions := repository.NewSessionRepository(rdb)

	geo := geocoding.NewClient(cfg.Geocoding.URL, cfg.Geocoding.APIKey, cfg.Geocoding.Timeout)
	addresses := service.NewAddressService(geo, cfg.Geocoding.DefaultCountry, metrics, logr.Named("address"))

	authSvc := service.NewAuthService(users, sessions, metrics, logr.Named("auth"), service.AuthConfig{
		Secret:     cfg.Session.Secret,
		SessionTTL: cfg.Session.TTL,
	})
	employeeSvc := service.NewEmployeeService(service.EmployeeServiceParams{
		Repo:      employees,
		Addresses: addresses,
		Audit:     users,
		Catalog:   catalog,
		Validator: validate,
		Logger:    logr.Named("employee"),
	})
	requestSvc := service.NewModifyRequestService(service.ModifyRequestServiceParams{
		Requests:  requests,
		Employees: employees,
		Tx:        db,
		Audit:     users,
		Metrics:   metrics,
		Catalog:   catalog,
		Logger:    logr.Named("modify_request"),
	})
	periodSvc := service.NewSalaryPeriodService(periods, employees, logr.Named("salary_period"))
	ticketSvc := service.NewTicketService(tickets, validate, logr.Named("ticket"))
	exportSvc := service.NewExportService(employees, periods, logr.Named("export"), nil, nil)
	catalogSvc := service.NewCatalogService(catalog)
	healthSvc := service.NewHealthService(db, employees, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}, logr.Named("health"))

	authHandler := handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure})
	employeeHandler := handler.NewEmployeeHandler(employeeSvc, exportSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	requestHandler := handler.NewModifyRequestHandler(requestSvc)
	periodHandler := handler.NewSalaryPeriodHandler(periodSvc, exportSvc)
	ticketHandler := handler.NewTicketHandler(ticketSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, healthSvc)

	loginLimit, err := middleware.RateLimit(cfg.RateLimit.Login, logr.Named("ratelimit"))
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/users/signup", loginLimit, authHandler.Signup)
	api.POST("/users/login", loginLimit, authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.Session(authSvc, cfg.Session.CookieName))
	admin := middleware.RequireRoles(models.RoleAdmin)

	secured.POST("/users/logout", authHandler.Logout)
	secured.GET("/users/session", authHandler.Session)
	secured.GET("/users", admin, authHandler.ListUsers)

	secured.GET("/departments", catalogHandler.Departments)
	secured.GET("/departments/:department/positions", catalogHandler.Positions)
	secured.GET("/positions/:position/salary", catalogHandler.Salary)

	employeesGroup := secured.Group("/employees")
	employeesGroup.GET("", employeeHandler.List)
	employeesGroup.POST("", employeeHandler.Create)
	employeesGroup.GET("/export", middleware.Audit(users, logr, middleware.AuditActionExportRoster, "employee"), employeeHandler.Export)
	employeesGroup.GET("/departments", catalogHandler.Departments)
	employeesGroup.GET("/departments/:department/positions", catalogHandler.Positions)
	employeesGroup.GET("/:id", employeeHandler.Get)
	employeesGroup.PUT("/:id", employeeHandler.Update)
	employeesGroup.DELETE("/:id", employeeHandler.Delete)

	requestsGroup := secured.Group("/modify-requests")
	requestsGroup.GET("", requestHandler.List)
	requestsGroup.GET("/pending", requestHandler.Pending)
	requestsGroup.POST("", requestHandler.Submit)
	requestsGroup.GET("/:id", requestHandler.Get)
	requestsGroup.PUT("/:id/approve", admin, requestHandler.Approve)
	requestsGroup.PUT("/:id/reject", admin, requestHandler.Reject)
	requestsGroup.DELETE("/:id", admin, requestHandler.Delete)

	periodsGroup := secured.Group("/salary-periods")
	periodsGroup.POST("", periodHandler.Create)
	periodsGroup.GET("/employee/:employeeId", periodHandler.ListByEmployee)
	periodsGroup.GET("/:id", periodHandler.Get)
	periodsGroup.GET("/:id/payslip", middleware.Audit(users, logr, middleware.AuditActionExportPayslip, "salary_period"), periodHandler.Payslip)
	periodsGroup.DELETE("/:id", periodHandler.Delete)

	ticketsGroup := secured.Group("/tickets")
	ticketsGroup.GET("", ticketHandler.List)
	ticketsGroup.POST("", ticketHandler.Create)
	ticketsGroup.GET("/:id", ticketHandler.Get)
	ticketsGroup.PUT("/:id/status", ticketHandler.UpdateStatus)
	ticketsGroup.DELETE("/:id", ticketHandler.Delete)

	return r, nil
}
