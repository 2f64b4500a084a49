package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"storefront/config"
	"storefront/internal/checkout"
	"storefront/internal/delivery"
	grpcDelivery "storefront/internal/delivery/grpc"
	"storefront/internal/discovery"
	"storefront/internal/events"
	"storefront/migrations"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the internal gRPC CartService",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving")
}

type publisher interface {
	checkout.Publisher
	Close()
}

func newPublisher(cfg *config.Config) (publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}, nil
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic, logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Info("Starting storefront...")

	conn, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(conn)

	if serveMigrate {
		if err := migrations.Up(conn.DB, logger); err != nil {
			return err
		}
	}

	pub, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	repos := newRepositories(conn)
	ucs := newUseCases(cfg, repos)
	checkoutService := checkout.NewService(repos.orders, pub, cfg.CheckoutEnforceStock, logger)

	gin.SetMode(cfg.GinMode)
	router := delivery.NewRouter(delivery.RouterDeps{
		APIKey:     cfg.APIKey,
		Auth:       ucs.auth,
		Products:   ucs.products,
		Categories: ucs.categories,
		Orders:     ucs.orders,
		Profiles:   ucs.profiles,
		Cart:       repos.cart,
		Checkout:   checkoutService,
		DB:         conn,
		Log:        logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpcDelivery.NewServer(
		grpcDelivery.NewCartHandler(repos.cart, checkoutService, logger), cfg.ServiceRoleKey, logger)
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Errorf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
		return err
	}

	registrar, err := register(cfg)
	if err != nil {
		logger.Warnf("Service registration skipped: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("HTTP server stopped serving.")
		return nil
	})
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		logger.Info("gRPC server stopped serving.")
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Warn("Shutdown signal received...")

		if registrar != nil {
			if err := registrar.DeregisterAll(); err != nil {
				logger.Warnf("Deregistration failed: %v", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("HTTP server shutdown failed: %v", err)
		}
		grpcServer.GracefulStop()
		logger.Info("gRPC server gracefully stopped.")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server error: %v", err)
		return err
	}
	logger.Info("storefront shut down gracefully.")
	return nil
}

// register announces both listeners to consul when CONSUL_ADDR is set.
func register(cfg *config.Config) (*discovery.Registrar, error) {
	if cfg.ConsulAddr == "" {
		return nil, nil
	}
	httpPort, err := discovery.ParsePort(cfg.HTTPPort)
	if err != nil {
		return nil, err
	}
	grpcPort, err := discovery.ParsePort(cfg.GrpcPort)
	if err != nil {
		return nil, err
	}
	client, err := discovery.NewClient(cfg.ConsulAddr)
	if err != nil {
		return nil, err
	}

	r := discovery.NewRegistrar(client, logger)
	if err := r.Register(discovery.HTTPRegistration(cfg.ServiceName, cfg.ServiceAddress, httpPort)); err != nil {
		return nil, err
	}
	if err := r.Register(discovery.GRPCRegistration(cfg.ServiceName, cfg.ServiceAddress, grpcPort, grpcDelivery.ServiceName)); err != nil {
		_ = r.DeregisterAll()
		return nil, err
	}
	return r, nil
}
