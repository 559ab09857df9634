package router

import (
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/config"
	"github.com/chathuwa-whiz/zors-pos/internal/handler"
	"github.com/chathuwa-whiz/zors-pos/internal/middleware"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"
	"github.com/chathuwa-whiz/zors-pos/internal/service"
	"github.com/chathuwa-whiz/zors-pos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	catalogSvc := service.NewCatalogService(productRepo, ledgerRepo)
	inventorySvc := service.NewInventoryService(productRepo, ledgerRepo)
	couponSvc := service.NewCouponService(couponRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	salesSvc := service.NewSalesService(orderRepo, productRepo, ledgerRepo, dispatcher)

	tabStore := service.NewRedisTabStore(rdb, time.Duration(cfg.TabStateTTLHours)*time.Hour)
	sessions := service.NewSessionManager(inventorySvc, salesSvc, tabStore)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	stockH := handler.NewStockHandler(inventorySvc)
	couponsH := handler.NewCouponsHandler(couponSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	ordersH := handler.NewOrdersHandler(salesSvc)
	tabsH := handler.NewTabsHandler(sessions, catalogSvc, couponSvc, salesSvc, cfg.CardSurchargePct)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Register surface — any authenticated cashier
		cashier := middleware.RequireRole("cashier", "admin")

		tabs := v1.Group("/tabs", cashier)
		{
			tabs.GET("", tabsH.List)
			tabs.POST("", tabsH.Create)
			tabs.GET("/active", tabsH.GetActive)
			tabs.POST("/reorder", tabsH.Reorder)
			tabs.DELETE("/:id", tabsH.Delete)
			tabs.PUT("/:id/activate", tabsH.Activate)

			// Cart mutation — always against the active tab
			tabs.POST("/cart/items", tabsH.AddItem)
			tabs.PATCH("/cart/items", tabsH.ChangeQuantity)
			tabs.DELETE("/cart/items/:productId", tabsH.RemoveItem)

			// Order detail edits
			tabs.PUT("/order-type", tabsH.SetOrderType)
			tabs.PUT("/table-charge", tabsH.SetTableCharge)
			tabs.PUT("/delivery-charge", tabsH.SetDeliveryCharge)
			tabs.PUT("/discount", tabsH.SetDiscount)
			tabs.PUT("/coupon", tabsH.ApplyCoupon)
			tabs.DELETE("/coupon", tabsH.RemoveCoupon)
			tabs.PUT("/kitchen-note", tabsH.SetKitchenNote)
			tabs.PUT("/customer", tabsH.AssignCustomer)

			// Checkout flow
			tabs.POST("/:id/checkout", tabsH.OpenCheckout)
			tabs.DELETE("/:id/checkout", tabsH.CancelCheckout)
			tabs.PUT("/:id/payment", tabsH.SetPayment)
			tabs.POST("/:id/complete", tabsH.Complete)
		}

		// Catalog — all authenticated can read, admin writes
		v1.GET("/products", cashier, productsH.List)
		v1.GET("/products/:id", cashier, productsH.GetByID)
		v1.GET("/products/barcode/:barcode", cashier, productsH.GetByBarcode)
		prods := v1.Group("/products", middleware.RequireRole("admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		// Stock ledger — events and audit are admin; reads open to cashiers
		v1.GET("/stock/ledger", cashier, stockH.ListLedger)
		stock := v1.Group("/stock", middleware.RequireRole("admin"))
		{
			stock.POST("/events", stockH.ApplyEvent)
			stock.GET("/reconcile", stockH.ReconcileAll)
			stock.GET("/reconcile/:id", stockH.Reconcile)
		}

		// Coupons
		v1.GET("/coupons", cashier, couponsH.List)
		coupons := v1.Group("/coupons", middleware.RequireRole("admin"))
		{
			coupons.POST("", couponsH.Create)
			coupons.DELETE("/:id", couponsH.Deactivate)
		}

		// Customers — cashiers create and read at the register
		customers := v1.Group("/customers", cashier)
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.GetByID)
		}
		v1.DELETE("/customers/:id", middleware.RequireRole("admin"), customersH.Deactivate)

		suppliers := v1.Group("/suppliers", middleware.RequireRole("admin"))
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.GetByID)
			suppliers.DELETE("/:id", suppliersH.Deactivate)
		}

		// Completed order history
		v1.GET("/orders", cashier, ordersH.List)
		v1.GET("/orders/:id", cashier, ordersH.GetByID)

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
