package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
	controller "teamhub/controllers"
	"teamhub/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)
	protectedAuth.Put("/me", controller.UpdateProfile)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	workflowController := controller.NewWorkflowController(db, log.New(os.Stdout, "WORKFLOW: ", log.LstdFlags))
	resourceController := controller.NewResourceController(db, log.New(os.Stdout, "RESOURCE: ", log.LstdFlags))

	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/me", teamController.GetMyTeam)
	team.Post("/join", teamController.JoinTeam)
	team.Post("/leave", teamController.LeaveTeam)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id/members/:userId", teamController.RemoveMember)
	team.Post("/:id/transfer", teamController.TransferLeadership)

	// Module workflow routes
	team.Post("/:id/modules", workflowController.AssignModule)
	team.Get("/:id/modules", workflowController.GetTeamModule)
	api.Post("/team-modules/:id/phases", workflowController.RecordPhase)
	api.Delete("/team-modules/:id", workflowController.RemoveModule)
	api.Get("/team-modules/:id/progress", workflowController.GetProgress)

	// Module catalog
	module := api.Group("/modules")
	module.Get("/", controller.GetModules)
	module.Get("/:id", controller.GetModule)

	// Payment routes
	payment := api.Group("/payments")
	payment.Post("/initiate", middleware.PaymentRateLimiter(), controller.InitiatePayment)
	payment.Get("/verify/:transactionId", controller.VerifyPayment)
	payment.Get("/subscription", controller.GetSubscriptionStatus)
	payment.Get("/", controller.GetTeamPayments)

	// Resource routes
	resource := api.Group("/resources")
	resource.Get("/", resourceController.GetResources)
	resource.Get("/:id", resourceController.GetResource)

	// Admin routes
	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Post("/modules", controller.CreateModule)
	admin.Put("/modules/:id", controller.UpdateModule)
	admin.Delete("/modules/:id", controller.DeleteModule)
	admin.Put("/teams/:id/active", teamController.SetTeamActive)
	admin.Put("/payments/:id/status", controller.UpdatePaymentStatus)
	admin.Post("/resources", resourceController.CreateResource)
	admin.Put("/resources/:id", resourceController.UpdateResource)
	admin.Delete("/resources/:id", resourceController.DeleteResource)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize the payment gateway client
	controller.InitPayUnit()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
