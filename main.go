package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"food-ordering-api/config"
	"food-ordering-api/dedup"
	"food-ordering-api/events"
	"food-ordering-api/handlers"
	"food-ordering-api/mailer"
	"food-ordering-api/media"
	"food-ordering-api/middleware"
	"food-ordering-api/payment"
	"food-ordering-api/routes"
	"food-ordering-api/services"
	"food-ordering-api/store"
	"food-ordering-api/store/gormstore"
	"food-ordering-api/store/mongostore"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const serviceName = "food-ordering-api"

func main() {
	bootLog := logrus.New()
	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.WithError(err).Fatal("Failed to load configuration")
	}

	gin.SetMode(cfg.GinMode)
	release := cfg.GinMode == gin.ReleaseMode
	log := config.NewLogger(cfg.LogLevel, release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()

	uploader, err := media.NewDiskUploader(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare upload directory")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 256, log)
		producer.Start()
		defer producer.Close()
		publisher = producer
		log.WithField("brokers", strings.Join(cfg.KafkaBrokers, ",")).Info("Publishing order events to Kafka")
	}

	var deduper dedup.Deduper = dedup.Nop{}
	if cfg.RedisAddr != "" {
		rd := dedup.NewRedis(cfg.RedisAddr, serviceName)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rd.Ping(pingCtx); err != nil {
			log.WithError(err).Warn("Redis unreachable; webhook dedup falls back to order state")
		}
		cancel()
		defer rd.Close()
		deduper = rd
	}

	gateway := payment.NewStripe(cfg.StripeSecretKey, cfg.WebhookEndpointSecret)
	frontend := strings.TrimRight(cfg.FrontendURL, "/")

	h := &handlers.Handler{
		Auth:        services.NewAuthService(st, mailer.NewLog(log), uploader, cfg.FrontendURL, cfg.ResetTokenTTL, log),
		Menus:       services.NewMenuService(st, uploader, log),
		Restaurants: services.NewRestaurantService(st, uploader, publisher, serviceName, log),
		Orders: services.NewOrderService(st, gateway, deduper, publisher, services.CheckoutConfig{
			Currency:   cfg.Currency,
			SuccessURL: frontend + "/order/status",
			CancelURL:  frontend + "/cart",
			Producer:   serviceName,
		}, log),
		Secret:        []byte(cfg.SecretKey),
		TokenTTL:      cfg.TokenTTL,
		SecureCookies: release,
		Log:           log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.MaxMultipartMemory = 8 << 20
	routes.SetupRoutes(r, h, routes.Options{
		UploadDir:   cfg.UploadDir,
		AuthLimiter: middleware.NewRateLimiter(10, 5, 10*time.Minute),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           corsHandler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received; shutting down gracefully")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
		return
	}
	log.Info("Server stopped cleanly")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DBDriver == config.DriverMongo {
		ms, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	db, err := config.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return gormstore.New(db), nil
}
