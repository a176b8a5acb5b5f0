package router

import (
	"net/http"

	assetsvc "fracton-backend/internal/application/assets"
	ledgersvc "fracton-backend/internal/application/ledger"
	"fracton-backend/internal/application/notifications"
	ordersvc "fracton-backend/internal/application/orders"
	usersvc "fracton-backend/internal/application/users"
	valsvc "fracton-backend/internal/application/valuations"
	authsvc "fracton-backend/internal/auth"
	"fracton-backend/internal/config"
	"fracton-backend/internal/constants"
	"fracton-backend/internal/infrastructure/database"
	assethandler "fracton-backend/internal/interfaces/handlers/assets"
	authhandler "fracton-backend/internal/interfaces/handlers/auth"
	healthhandler "fracton-backend/internal/interfaces/handlers/health"
	orderhandler "fracton-backend/internal/interfaces/handlers/orders"
	tokenhandler "fracton-backend/internal/interfaces/handlers/tokens"
	userhandler "fracton-backend/internal/interfaces/handlers/users"
	valhandler "fracton-backend/internal/interfaces/handlers/valuations"
	"fracton-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, redisClient, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redisClient
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		var notifier notifications.Notifier
		if cfg.BrevoAPIKey != "" {
			notifier = &notifications.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
		}

		// Users — registration is public, compliance administration is not.
		us := &usersvc.Service{DB: db, Rdb: rdb, Notifier: notifier}
		uh := &userhandler.Handlers{Service: us, Config: sessionCfg}
		app.Post("/api/v1/users/register", uh.Register)
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Get("/:user_id", uh.ViewUser)
		ug.Patch("/:user_id/kyc", middleware.AuthorizePermission(constants.SetKycStatus), uh.SetKycStatus)
		ug.Patch("/:user_id/freeze", middleware.AuthorizePermission(constants.FreezeAccount), uh.SetFrozen)

		// Assets
		as := &assetsvc.Service{DB: db}
		vs := &valsvc.Service{DB: db}
		asth := &assethandler.Handlers{Service: as, Valuations: vs}
		ag := app.Group("/api/v1/assets", middleware.RequireAuth())
		ag.Post("/", middleware.AuthorizePermission(constants.CreateAsset), asth.CreateAsset)
		ag.Get("/", asth.ListAssets)
		ag.Get("/:asset_id", asth.GetAsset)
		ag.Patch("/:asset_id/nav", middleware.AuthorizePermission(constants.ReviseNav), asth.ReviseNav)
		ag.Get("/:asset_id/nav-history", asth.NavHistory)
		ag.Get("/:asset_id/price-history", asth.PriceHistory)

		// Tokens
		ls := &ledgersvc.Service{DB: db, Notifier: notifier}
		th := &tokenhandler.Handlers{Service: ls}
		tg := app.Group("/api/v1/tokens", middleware.RequireAuth())
		tg.Post("/mint", middleware.AuthorizePermission(constants.MintTokens), th.Mint)
		tg.Get("/mine", middleware.AuthorizePermission(constants.ViewLedger), th.MyTokens)
		tg.Get("/transfers", middleware.AuthorizePermission(constants.ViewLedger), th.MyTransfers)
		tg.Get("/transfers/:asset_id", middleware.AuthorizePermission(constants.AdjustBalance), th.AssetTransfers)
		tg.Post("/:token_id/revoke", middleware.AuthorizePermission(constants.RevokeTokens), th.Revoke)
		tg.Patch("/:token_id/amount", middleware.AuthorizePermission(constants.AdjustBalance), th.SetAmount)
		tg.Patch("/:token_id/freeze", middleware.AuthorizePermission(constants.FreezeToken), th.SetFrozen)
		tg.Get("/:token_id", middleware.AuthorizePermission(constants.ViewLedger), th.GetToken)

		// Orders
		os := &ordersvc.Service{DB: db, Notifier: notifier}
		oh := &orderhandler.Handlers{Service: os}
		og := app.Group("/api/v1/orders", middleware.RequireAuth())
		og.Post("/", middleware.AuthorizePermission(constants.PlaceOrder), oh.CreateOrder)
		og.Get("/book", middleware.AuthorizePermission(constants.ViewLedger), oh.ListBook)
		og.Get("/mine", middleware.AuthorizePermission(constants.ViewLedger), oh.MyOrders)
		og.Get("/pending", middleware.AuthorizePermission(constants.ReviewOrder), oh.ListPending)
		og.Post("/:order_id/approve", middleware.AuthorizePermission(constants.ReviewOrder), oh.ApproveOrder)
		og.Post("/:order_id/reject", middleware.AuthorizePermission(constants.ReviewOrder), oh.RejectOrder)
		og.Post("/:order_id/cancel", middleware.AuthorizePermission(constants.CancelOrder), oh.CancelOrder)
		og.Post("/:order_id/fill", middleware.AuthorizePermission(constants.FillOrder), oh.FillOrder)
		og.Get("/:order_id", middleware.AuthorizePermission(constants.ViewLedger), oh.GetOrder)

		// Valuations
		vh := &valhandler.Handlers{Service: vs}
		vg := app.Group("/api/v1/valuations", middleware.RequireAuth())
		vg.Get("/portfolio", middleware.AuthorizePermission(constants.ViewLedger), vh.Portfolio)
		vg.Get("/portfolio/:user_id", middleware.AuthorizePermission(constants.ViewLedger), vh.UserPortfolio)
		vg.Get("/latest-price/:asset_id", middleware.AuthorizePermission(constants.ViewLedger), vh.LatestPrice)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
