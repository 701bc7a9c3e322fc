package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/sidra/internal/api/controller"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/service/auth"
	"github.com/ougirez/sidra/internal/service/catalog"
	"github.com/ougirez/sidra/internal/service/harvest"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIService struct {
	router         *echo.Echo
	harvestService *harvest.Service
	catalogService *catalog.Service
	authService    *auth.Service
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler для тестов через httptest.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(harvestService *harvest.Service, catalogService *catalog.Service, authService *auth.Service) (*APIService, error) {
	svc := &APIService{
		router:         echo.New(),
		harvestService: harvestService,
		catalogService: catalogService,
		authService:    authService,
	}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.WARN)
	svc.router.JSONSerializer = NewSerializer()
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.Recover())
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	svc.router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(svc.harvestService, svc.catalogService, svc.authService)

	admin := api.Group("/admin")
	admin.POST("/login", cntrl.LoginAdmin)

	api.POST("/harvest", cntrl.Harvest, svc.AdminMiddleware)

	tables := api.Group("/tables")
	tables.GET("", cntrl.GetTables)
	tables.GET("/:id", cntrl.GetTable)
	tables.GET("/:id/variables", cntrl.GetVariables)
	tables.GET("/:id/categories", cntrl.GetCategories)
	tables.GET("/:id/sheets/:variable_id", cntrl.GetSheet)
	tables.GET("/:id/description", cntrl.GetDescription)

	api.GET("/periods", cntrl.GetPeriods)
	api.GET("/failures", cntrl.GetFailures)

	return svc, nil
}
