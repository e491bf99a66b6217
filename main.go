package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"raydrip/internal/cart"
	"raydrip/internal/catalog"
	"raydrip/internal/checkout"
	"raydrip/internal/config"
	"raydrip/internal/database"
	"raydrip/internal/events"
	"raydrip/internal/handlers"
	"raydrip/internal/identity"
	"raydrip/internal/ledger"
	"raydrip/internal/middleware"
	"raydrip/internal/payment"
	"raydrip/internal/storage"
)

func main() {
	config.Load()
	env := config.AppEnv

	if env.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set, run cmd/genkey to create one")
	}
	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal(err)
	}

	cat, err := catalog.Default()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("catalog loaded: %d products", cat.List(catalog.Filter{Page: 1, Limit: catalog.MaxLimit}).Total)

	ctx := context.Background()

	var store storage.Store
	switch env.StorageDriver {
	case "memory":
		store = storage.NewMemoryStore()
		log.Println("⚠️ using in-memory client storage, state is lost on restart")
	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     env.RedisAddress,
			Password: env.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Println("Redis connected to:", env.RedisAddress)
		store = storage.NewRedisStore(redisClient)
	}

	db, err := database.Connect(ctx, env.MongoURI, env.DBName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Println("⚠️ mongo disconnect:", err)
		}
	}()
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureAccountIndexes(db); err != nil {
		log.Printf("⚠️ account index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db); err != nil {
		log.Printf("⚠️ payment index warning: %v", err)
	}

	accounts := database.NewAccountRepository(db)
	payments := database.NewPaymentRepository(db)

	publisher := events.New(env.KafkaTopic, env.KafkaBrokers)
	defer publisher.Close()

	gateway := payment.New(payment.Config{
		KeyID:     env.RazorpayKeyID,
		KeySecret: env.RazorpayKeySecret,
		APIURL:    env.RazorpayAPIURL,
		Timeout:   env.PaymentTimeout,
	})

	carts := cart.NewService(store, cat, env.CartTTL)
	ids := identity.NewManager(store, identity.LogSender{}, env.OTPCooldown)
	orders := ledger.New(store)
	flow := checkout.NewFlow(checkout.Deps{
		Store:     store,
		Cart:      carts,
		Identity:  ids,
		Ledger:    orders,
		Gateway:   gateway,
		Recorder:  payments,
		Publisher: publisher,
	}, checkout.Config{
		Currency:        env.Currency,
		GuestCode:       env.GuestVerificationCode,
		ProcessingDelay: env.ProcessingDelay,
	})

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     env.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.ClientIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.ClientIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.Health(db))

	r.GET("/products", handlers.GetProducts(cat))
	r.GET("/products/:id", handlers.GetProduct(cat))
	r.GET("/categories", handlers.GetCategories(cat))

	r.POST("/users/register", handlers.Register(accounts))
	r.POST("/users/login", handlers.Login(accounts, env.JWTSecret, env.AccessTokenTTL))

	user := r.Group("/users")
	user.Use(middleware.UserAuth(env.JWTSecret))
	{
		user.GET("/profile", handlers.GetProfile(accounts))
		user.PUT("/profile", handlers.UpdateProfile(accounts))
	}

	scoped := r.Group("/")
	scoped.Use(middleware.ClientScope())
	{
		scoped.GET("/cart", handlers.GetCart(carts))
		scoped.POST("/cart/items", handlers.AddCartItem(carts))
		scoped.PUT("/cart/items/:productId", handlers.UpdateCartItem(carts))
		scoped.DELETE("/cart/items/:productId", handlers.RemoveCartItem(carts))
		scoped.DELETE("/cart", handlers.ClearCart(carts))

		scoped.GET("/checkout", handlers.GetCheckout(flow))
		scoped.POST("/checkout", handlers.BeginCheckout(flow))
		scoped.POST("/checkout/complete", handlers.CompleteCheckout(flow))
		scoped.POST("/checkout/cancel", handlers.CancelCheckout(flow))
		scoped.POST("/checkout/verify", handlers.VerifyGuestCheckout(flow))

		scoped.POST("/auth/otp/request", handlers.RequestOTP(ids, env.OTPDemoMode))
		scoped.POST("/auth/otp/verify", handlers.VerifyOTP(ids))
		scoped.POST("/auth/otp/profile", handlers.CompleteOTPProfile(ids))
		scoped.GET("/auth/session", handlers.GetSession(ids))
		scoped.POST("/auth/logout", handlers.LogoutOTP(ids))

		scoped.GET("/orders", handlers.GetOrders(orders))
		scoped.GET("/orders/:id", handlers.GetOrder(orders))

		scoped.POST("/razor/api/createOrder", handlers.CreateRazorOrder(gateway, env.Currency))
		scoped.POST("/razor/api/savePayment", handlers.SavePayment(gateway, payments))
		scoped.GET("/razor/api/payment/:orderId", handlers.GetPayment(payments))
	}

	if err := r.Run(":" + env.Port); err != nil {
		log.Fatal(err)
	}
}
