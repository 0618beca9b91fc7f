package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/galargov/ravkav-services/configs"
	"github.com/galargov/ravkav-services/internal/gatesvc/broker"
	"github.com/galargov/ravkav-services/internal/gatesvc/card"
	gateconfig "github.com/galargov/ravkav-services/internal/gatesvc/config"
	"github.com/galargov/ravkav-services/internal/gatesvc/decision"
	"github.com/galargov/ravkav-services/internal/gatesvc/engine"
	handlers "github.com/galargov/ravkav-services/internal/gatesvc/handlers"
	"github.com/galargov/ravkav-services/internal/gatesvc/service"
	"github.com/galargov/ravkav-services/internal/gatesvc/ws"
	nats "github.com/galargov/ravkav-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "gate"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	gateId := config.CreateUniqueInstance(SERVICE_NAME)

	cfg, err := gateconfig.Load()
	if err != nil {
		log.Fatalf("Invalid gate configuration: %v", err)
	}

	// contactless reader
	reader, err := card.OpenNFCReader(cfg.Device)
	if err != nil {
		log.Fatalf("Failed to open NFC reader: %v", err)
	}
	defer reader.Close()
	log.Printf("NFC reader opened successfully")

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	b := broker.NewBroker(n.Conn, gateId)
	hub := ws.NewHub(gateId)

	eng := engine.New(cfg.BudgetBlock, cfg.Key)
	machine := decision.NewMachine(cfg.AuthorizedUID, cfg.EntryCost)
	gate := service.NewGateService(reader, eng, machine, cfg.FirstBalance, b, hub)

	// card poll loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := gate.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("gate loop stopped: %v", err)
		}
	}()

	// idle screen refresh and liveness
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.PublishHeartbeat()
				b.PublishBalance(gate.Balance())
				hub.BroadcastBalance(gate.Balance())
			}
		}
	}()

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gate, hub)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GATE_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
