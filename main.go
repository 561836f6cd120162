package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/controllers"
	"github.com/lokaclean/lokaclean-api/middleware"
	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
)

func main() {
	log.Println("Starting LokaClean API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	err = db.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Order{},
		&models.Payment{},
		&models.Tip{},
		&models.Rating{},
		&models.OrderPhoto{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if _, err := services.InitPhotoStorage(); err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}
	services.InitPaymentGateway()
	services.InitNotifier()
	if _, err := services.InitGeocoder(); err != nil {
		log.Fatalf("Failed to initialize geocoder: %v", err)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://app.lokaclean.example"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		authorized := v1.Group("")
		authorized.Use(middleware.EnsureValidToken(cfg))
		{
			authorized.POST("/users", controllers.CreateUser)
			authorized.GET("/users/me", controllers.GetCurrentUser)

			authorized.GET("/packages", controllers.ListPackages)

			authorized.POST("/orders", controllers.CreateOrder)
			authorized.GET("/orders", controllers.ListOrders)
			authorized.GET("/orders/:id", controllers.GetOrder)
			authorized.POST("/orders/:id/cancel", controllers.CancelOrder)

			authorized.POST("/orders/:id/checkout", controllers.CreateCheckout)
			authorized.POST("/orders/:id/payment/callback", controllers.PaymentCallback)

			authorized.POST("/orders/:id/photos/after", controllers.UploadAfterPhotos)
			authorized.POST("/orders/:id/tip", controllers.RecordTip)
			authorized.POST("/orders/:id/complete", controllers.CompleteOrder)
			authorized.POST("/orders/:id/rating", controllers.RecordRating)

			staff := authorized.Group("")
			staff.Use(middleware.RequireStaff())
			{
				staff.POST("/packages", controllers.CreatePackage)
				staff.POST("/orders/:id/confirm", controllers.ConfirmOrder)
				staff.POST("/orders/:id/dispatch", controllers.DispatchOrder)
				staff.POST("/orders/:id/payment/settle", controllers.SettleCashPayment)
			}
		}
	}

	sweeper := services.NewExpirySweeper(db, services.NewOrderService(db), services.GetPaymentGateway())
	sweeper.Start()
	defer sweeper.Stop()

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "LokaClean API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
