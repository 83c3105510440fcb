package FiberConfig

import (
	"fmt"
	"time"

	"Atlas/Controllers"
	"Atlas/Models"
	"Atlas/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	inspectionHandler := Controllers.NewInspectionHandler(db)
	maintenanceHandler := Controllers.NewMaintenanceHandler(db)

	// API group
	api := app.Group("/api")

	// Inspection routes
	inspections := api.Group("/inspections", middleware.Verify(Models.PermissionViewer))
	inspections.Get("/", inspectionHandler.ListInspections)
	inspections.Get("/statistics", inspectionHandler.InspectionStatistics)
	inspections.Get("/export", middleware.Verify(Models.PermissionSupervisor), Controllers.ExportInspections)
	inspections.Post("/", middleware.Verify(Models.PermissionInspector), inspectionHandler.CreateInspection)
	inspections.Get("/:id", inspectionHandler.GetInspection)
	inspections.Put("/:id", middleware.Verify(Models.PermissionInspector), inspectionHandler.UpdateInspection)
	inspections.Delete("/:id", middleware.Verify(Models.PermissionSupervisor), inspectionHandler.DeleteInspection)
	inspections.Delete("/:id/permanent", middleware.Verify(Models.PermissionAdmin), inspectionHandler.HardDeleteInspection)

	// Workflow transitions
	inspections.Post("/:id/start", middleware.Verify(Models.PermissionInspector), inspectionHandler.StartInspection)
	inspections.Post("/:id/complete", middleware.Verify(Models.PermissionInspector), inspectionHandler.CompleteInspection)
	inspections.Post("/:id/cancel", middleware.Verify(Models.PermissionInspector), inspectionHandler.CancelInspection)
	inspections.Post("/:id/reschedule", middleware.Verify(Models.PermissionInspector), inspectionHandler.RescheduleInspection)
	inspections.Post("/:id/duplicate", middleware.Verify(Models.PermissionInspector), inspectionHandler.DuplicateInspection)
	inspections.Post("/:id/restore", middleware.Verify(Models.PermissionSupervisor), inspectionHandler.RestoreInspection)

	// Result photo routes
	api.Post("/results/:id/photo", middleware.Verify(Models.PermissionInspector), Controllers.UploadResultPhoto)
	app.Get("/photos/:filename", Controllers.ServePhoto)

	// Maintenance routes
	maintenance := api.Group("/maintenance", middleware.Verify(Models.PermissionViewer))
	maintenance.Get("/", maintenanceHandler.ListMaintenance)
	maintenance.Post("/", middleware.Verify(Models.PermissionInspector), maintenanceHandler.CreateMaintenance)
	maintenance.Get("/:id", maintenanceHandler.GetMaintenance)
	maintenance.Put("/:id", middleware.Verify(Models.PermissionInspector), maintenanceHandler.UpdateMaintenance)
	maintenance.Delete("/:id", middleware.Verify(Models.PermissionSupervisor), maintenanceHandler.DeleteMaintenance)
	maintenance.Post("/:id/start", middleware.Verify(Models.PermissionInspector), maintenanceHandler.StartMaintenance)
	maintenance.Post("/:id/complete", middleware.Verify(Models.PermissionInspector), maintenanceHandler.CompleteMaintenance)
	maintenance.Post("/:id/cancel", middleware.Verify(Models.PermissionInspector), maintenanceHandler.CancelMaintenance)

	// Equipment registry routes
	equipment := api.Group("/equipment", middleware.Verify(Models.PermissionViewer))
	equipment.Get("/", Controllers.FetchEquipment)
	equipment.Get("/types", Controllers.FetchEquipmentTypes)
	equipment.Post("/types", middleware.Verify(Models.PermissionSupervisor), Controllers.RegisterEquipmentType)
	equipment.Post("/", middleware.Verify(Models.PermissionSupervisor), Controllers.RegisterEquipment)
	equipment.Get("/:id", Controllers.GetEquipment)
	equipment.Put("/:id", middleware.Verify(Models.PermissionSupervisor), Controllers.UpdateEquipment)
	equipment.Delete("/:id", middleware.Verify(Models.PermissionAdmin), Controllers.DeleteEquipment)

	// Checklist template routes
	templates := api.Group("/templates", middleware.Verify(Models.PermissionViewer))
	templates.Get("/", Controllers.FetchTemplateItems)
	templates.Post("/", middleware.Verify(Models.PermissionSupervisor), Controllers.CreateTemplateItem)
	templates.Put("/:id", middleware.Verify(Models.PermissionSupervisor), Controllers.UpdateTemplateItem)
	templates.Delete("/:id", middleware.Verify(Models.PermissionSupervisor), Controllers.DeleteTemplateItem)

	// Account routes
	app.Post("/api/Login", Controllers.Login)
	app.Post("/api/Logout", Controllers.Logout)
	app.Post("/api/RegisterUser", middleware.Verify(Models.PermissionAdmin), Controllers.RegisterUser)
	app.Get("/api/FetchUsers", middleware.Verify(Models.PermissionAdmin), Controllers.FetchUsers)
	app.Patch("/api/UpdateUser", middleware.Verify(Models.PermissionAdmin), Controllers.UpdateUser)
	app.Delete("/api/DeleteUser/:id", middleware.Verify(Models.PermissionAdmin), Controllers.DeleteUser)
	app.Get("/api/validate-token", middleware.Verify(0), Controllers.ValidateToken)
	app.Get("/api/User", middleware.Verify(0), Controllers.CurrentUser)
	app.Post("/api/UpdateToken", middleware.Verify(0), Models.UpdateToken)

	// Request log API
	app.Get("/api/logs", middleware.Verify(Models.PermissionAdmin), Controllers.GetLogs)
	app.Get("/api/logs/stats", middleware.Verify(Models.PermissionAdmin), Controllers.GetLogStats)

	// Dashboard
	app.Get("/", middleware.Verify(Models.PermissionViewer), Controllers.Dashboard)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	engine := html.New("./Templates", ".html")
	// Html Template engine
	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)
	app.Static("/static", "static/", fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	app.Listen(":3001")
}
