package routes

import (
	"velvet_back_end/internal/handlers"
	"velvet_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	// Auth
	r.POST("/register", middleware.RegisterRateLimit(), handlers.Register)
	r.POST("/token", middleware.LoginRateLimit(), handlers.Login)
	r.POST("/reset-password", middleware.ResetRateLimit(), handlers.ResetPassword)
	r.POST("/change-password", handlers.ChangePassword)
	r.GET("/login-activity", middleware.AuthRequired(), handlers.GetLoginActivity)
	r.GET("/me", middleware.AuthRequired(), handlers.Me)

	// OAuth
	r.GET("/auth/:provider", handlers.BeginAuth)
	r.GET("/auth/:provider/callback", handlers.CallbackAuth)

	// Fournisseurs & produits
	r.GET("/suppliers", handlers.GetSuppliers)
	r.GET("/products", handlers.GetAllProducts)
	r.GET("/products/search", handlers.SearchProducts)
	r.GET("/products/:name", handlers.GetProduct)
	r.GET("/products/:name/qr", handlers.ProductQR)
	r.POST("/products", handlers.UpsertProduct)
	r.POST("/purchase", handlers.Purchase)

	// Avis — les deux formes sont servies sans redirection 307, les
	// clients historiques POSTent avec le slash final.
	r.POST("/reviews/", middleware.AuthRequired(), handlers.CreateReview)
	r.POST("/reviews", middleware.AuthRequired(), handlers.CreateReview)
	r.GET("/products/:name/reviews", handlers.GetProductReviews)

	// Photos — la modération est volontairement ouverte, comme le reste
	// des lectures.
	r.POST("/photos/upload", middleware.AuthRequired(), handlers.UploadPhoto)
	r.GET("/photos", handlers.GetPhotos)
	r.GET("/photos/all", handlers.GetAllPhotos)
	r.GET("/photos/categories", handlers.GetPhotoCategories)
	r.PUT("/photos/:id/approve", handlers.ApprovePhoto)
	r.GET("/static/:filename", handlers.StaticPhoto)

	// Temps réel
	r.GET("/ws/stock", middleware.AuthRequired(), handlers.StockWebSocket)
}
