package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements      MovementService
	StockCards     StockCardService
	Reconciliation ReconciliationService
	Auth           LoginService
	Products       ProductService
	Categories     CategoryService
	Warehouses     WarehouseService
	Reports        ReportService
	MetricsHandler nethttp.Handler // nil = sin /metrics
	JWTSecret      string
	DevMode        bool // sin token obligatorio en las rutas de movimientos
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Auth (público)
	if deps.Auth != nil {
		authHandler := NewAuthHandler(deps.Auth)
		api.Post("/auth/login", authHandler.Login)
	}

	// Rutas protegidas (Bearer Token; en modo desarrollo el token es opcional)
	authMW := AuthMiddleware(deps.JWTSecret)
	if deps.DevMode {
		authMW = DevAuthMiddleware(deps.JWTSecret)
	}

	movements := api.Group("/inventory-movements", authMW)
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.StockCards)
	movements.Post("/", inventoryHandler.Create)
	movements.Get("/", inventoryHandler.List)
	movements.Get("/product/:productId", inventoryHandler.ListByProduct)
	movements.Get("/product/:productId/stock-card.pdf", inventoryHandler.StockCardPDF)
	movements.Get("/:id", inventoryHandler.GetByID)
	movements.Put("/:id", inventoryHandler.Update)
	movements.Delete("/:id", inventoryHandler.Delete)

	// Catálogo: lectura para cualquier usuario autenticado, escritura solo admin
	if deps.Products != nil {
		productHandler := NewProductHandler(deps.Products)
		products := api.Group("/products", authMW)
		products.Get("/", productHandler.List)
		products.Get("/:id", productHandler.GetByID)
		products.Post("/", RequireRole("admin"), productHandler.Create)
		products.Put("/:id", RequireRole("admin"), productHandler.Update)
	}
	if deps.Categories != nil {
		categoryHandler := NewCategoryHandler(deps.Categories)
		categories := api.Group("/categories", authMW)
		categories.Get("/", categoryHandler.List)
		categories.Get("/:id", categoryHandler.GetByID)
		categories.Post("/", RequireRole("admin"), categoryHandler.Create)
		categories.Put("/:id", RequireRole("admin"), categoryHandler.Update)
		categories.Delete("/:id", RequireRole("admin"), categoryHandler.Delete)
	}
	if deps.Warehouses != nil {
		warehouseHandler := NewWarehouseHandler(deps.Warehouses)
		warehouses := api.Group("/warehouses", authMW)
		warehouses.Get("/", warehouseHandler.List)
		warehouses.Get("/:id", warehouseHandler.GetByID)
		warehouses.Post("/", RequireRole("admin"), warehouseHandler.Create)
	}

	if deps.Reports != nil {
		reportHandler := NewReportHandler(deps.Reports)
		reports := api.Group("/reports", authMW)
		reports.Get("/inventory-summary", reportHandler.InventorySummary)
		reports.Get("/top-products", reportHandler.TopProducts)
		reports.Get("/low-stock", reportHandler.LowStock)
		reports.Get("/category-distribution", reportHandler.CategoryDistribution)
		reports.Get("/dashboard", reportHandler.Dashboard)
		reports.Get("/movements-by-period", reportHandler.MovementsByPeriod)
	}

	// Conciliación (solo admin)
	if deps.Reconciliation != nil {
		reconciliationHandler := NewReconciliationHandler(deps.Reconciliation)
		api.Post("/inventory/reconciliation", authMW, RequireRole("admin"), reconciliationHandler.Reconcile)
	}
}
