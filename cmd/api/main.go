package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"pos-inventory/internal/cache"
	"pos-inventory/internal/config"
	"pos-inventory/internal/handler"
	"pos-inventory/internal/middleware"
	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/internal/service"
	"pos-inventory/internal/ws"
	"pos-inventory/pkg/database"
	"pos-inventory/pkg/jwt"
	"pos-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config
	cfg, envFound := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.WithModule("main")
	if !envFound {
		log.Warn(".env file not found, using process environment")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, cfg.DebugSQL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(
		&model.Privilege{}, &model.Role{}, &model.User{},
		&model.Category{}, &model.Supplier{}, &model.Product{}, &model.Promotion{},
		&model.Sale{}, &model.SaleItem{},
		&model.PurchaseOrder{}, &model.PurchaseOrderItem{},
		&model.StockMovement{},
	); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(ctx, db, cfg)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 5. Promotion cache
	var promoCache cache.PromotionCache = cache.NoopPromotionCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisPromotionCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, promotion cache disabled")
			_ = redisCache.Close()
		} else {
			defer redisCache.Close()
			promoCache = redisCache
			log.WithField("addr", cfg.RedisAddr).Info("promotion cache enabled")
		}
	}

	// 6. Dependency Injection (Wiring Layers)
	uow := repository.NewUnitOfWork(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	promotionRepo := repository.NewPromotionRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	orderRepo := repository.NewPurchaseOrderRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	activePromotions := service.NewActivePromotions(promotionRepo, promoCache, cfg.PromotionCacheTTL, cfg.PromotionEnforceStartDate)

	authService := service.NewAuthService(userRepo, tokens, cfg.SessionIdleTimeout, wsHub)
	userService := service.NewUserService(userRepo, roleRepo)
	catalogService := service.NewCatalogService(uow, productRepo, categoryRepo, supplierRepo, promotionRepo, activePromotions, wsHub)
	posService := service.NewPOSService(uow, productRepo, saleRepo, activePromotions, wsHub)
	purchaseService := service.NewPurchaseService(uow, orderRepo, wsHub)
	stockService := service.NewStockService(uow, productRepo, movementRepo, wsHub)
	reportService := service.NewReportService(saleRepo)
	dashService := service.NewDashboardService(productRepo, saleRepo, movementRepo, cfg.LowStockThreshold, cfg.Location)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	posHandler := handler.NewPOSHandler(posService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	stockHandler := handler.NewStockHandler(stockService)
	reportHandler := handler.NewReportHandler(reportService, cfg.Location)
	dashHandler := handler.NewDashboardHandler(dashService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Inventory v1.0",
	})

	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 8. Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(authService)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetStockMovement)

	// Catalog
	protected.Get("/products", middleware.RequirePrivilege("product:view"), catalogHandler.GetProducts)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), catalogHandler.DeleteProduct)

	protected.Get("/categories", catalogHandler.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege("category:manage"), catalogHandler.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege("category:manage"), catalogHandler.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege("category:manage"), catalogHandler.DeleteCategory)

	protected.Get("/suppliers", middleware.RequireAnyPrivilege("supplier:manage", "purchase:view"), catalogHandler.GetSuppliers)
	protected.Post("/suppliers", middleware.RequirePrivilege("supplier:manage"), catalogHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequirePrivilege("supplier:manage"), catalogHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", middleware.RequirePrivilege("supplier:manage"), catalogHandler.DeleteSupplier)

	protected.Get("/promotions", middleware.RequirePrivilege("promotion:manage"), catalogHandler.GetPromotions)
	protected.Get("/promotions/active", catalogHandler.GetActivePromotions)
	protected.Post("/promotions", middleware.RequirePrivilege("promotion:manage"), catalogHandler.CreatePromotion)
	protected.Put("/promotions/:id", middleware.RequirePrivilege("promotion:manage"), catalogHandler.UpdatePromotion)
	protected.Delete("/promotions/:id", middleware.RequirePrivilege("promotion:manage"), catalogHandler.DeletePromotion)

	// Point of sale
	protected.Get("/pos/data", middleware.RequirePrivilege("sale:create"), posHandler.GetPosData)
	protected.Post("/pos/quote", middleware.RequirePrivilege("sale:create"), posHandler.Quote)
	protected.Post("/pos/sales", middleware.RequirePrivilege("sale:create"), posHandler.CommitSale)
	protected.Get("/sales/:id", middleware.RequirePrivilege("sale:view"), posHandler.GetSale)

	// Purchasing
	protected.Get("/purchase-orders", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPurchaseOrders)
	protected.Get("/purchase-orders/:id", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPurchaseOrder)
	protected.Post("/purchase-orders", middleware.RequirePrivilege("purchase:create"), purchaseHandler.CreatePurchaseOrder)
	protected.Post("/purchase-orders/:id/receive", middleware.RequirePrivilege("purchase:receive"), purchaseHandler.ReceivePurchaseOrder)

	// Stock
	protected.Post("/stock/adjustments", middleware.RequirePrivilege("stock:adjust"), stockHandler.AdjustStock)
	protected.Get("/stock/movements", middleware.RequirePrivilege("stock:view"), stockHandler.GetMovements)
	protected.Get("/stock/reconcile/:productId", middleware.RequireRole(model.RoleAdmin), stockHandler.Reconcile)

	// Reports
	protected.Get("/reports/sales", middleware.RequirePrivilege("report:view"), reportHandler.SalesReport)
	protected.Get("/reports/profit", middleware.RequirePrivilege("report:view"), reportHandler.ProfitReport)

	// User management
	protected.Get("/users", middleware.RequirePrivilege("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege("user:view"), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", middleware.RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll(c.UserContext())
		if err != nil {
			logger.LogError("main", "privileges", "find all", nil, err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Join(c)
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(cfg.Address()); err != nil {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	log.Info("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the first admin user if they don't exist
func seedPrivilegesRolesAndAdmin(ctx context.Context, db *gorm.DB, cfg config.Config) {
	log := logger.WithModule("seed")
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.WithError(err).Warn("failed to seed privileges")
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.WithError(err).Warn("failed to seed roles")
	}

	_, err := userRepo.FindByEmail(ctx, cfg.SeedAdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.WithError(err).Warn("failed to look up admin user")
		return
	}
	if cfg.SeedAdminPassword == "" {
		log.Warn("no admin user and SEED_ADMIN_PASSWORD is empty, skipping admin seed")
		return
	}

	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		log.WithError(err).Warn("ADMIN role missing, skipping admin seed")
		return
	}

	admin := &model.User{
		Email:    cfg.SeedAdminEmail,
		FullName: "Administrator",
		RoleID:   &adminRole.ID,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(cfg.SeedAdminPassword); err != nil {
		log.WithError(err).Warn("failed to hash admin password")
		return
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.WithError(err).Warn("failed to create admin user")
		return
	}
	log.WithField("email", cfg.SeedAdminEmail).Info("admin user created")
}
