package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/app"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/config"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/logger"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

const serviceName = "chitchest-api"

// rateLimited are throttled per username (Register, Login) or per peer (Pair).
var rateLimited = map[string]bool{
	v1.ChestService_Register_FullMethodName: true,
	v1.ChestService_Login_FullMethodName:    true,
	v1.ChestService_Pair_FullMethodName:     true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.New(serviceName, "error")
		log.Fatal().Stack().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	log := logger.New(serviceName, cfg.LogLevel)

	backend, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing backend")
		}
	}()

	jwtMgr, err := cfg.JWTManager()
	if err != nil {
		return err
	}

	mtr := metrics.New(prometheus.DefaultRegisterer)

	deps := backend.Deps
	deps.Metrics = mtr
	deps.Logger = log
	svc := service.New(deps)

	if n, err := svc.RecoverPairings(ctx); err != nil {
		log.Warn().Err(err).Msg("pairing recovery failed")
	} else if n > 0 {
		log.Info().Int("committed", n).Msg("recovered interrupted pairings")
	}

	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	defer limiterStore.Stop()

	serverOpts, err := grpcServerOptions(cfg, log, mtr, jwtMgr, limiterStore)
	if err != nil {
		return err
	}
	grpcServer := grpc.NewServer(serverOpts...)
	registerService(grpcServer, newServer(svc, jwtMgr, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	opsServer := newOpsServer(cfg.MetricsAddr, newOpsRouter(prometheus.DefaultGatherer, backend.Ping))
	sweeper := service.NewSweeper(svc, cfg.SweepInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.GRPCAddr()).
			Bool("tls", cfg.TLSEnabled()).
			Dur("day_length", svc.DayLength()).
			Msg("gRPC server listening")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("ops server listening")
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("ops server shutdown")
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func grpcServerOptions(cfg *config.Config, log zerolog.Logger, mtr *metrics.Metrics, jwtMgr *auth.JWTManager, limiter *middleware.LimiterStore) ([]grpc.ServerOption, error) {
	var opts []grpc.ServerOption

	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load TLS certs")
		}
		opts = append(opts, grpc.Creds(creds))
	}

	// recovery -> logging -> rate limit -> auth
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			recoveryUnaryInterceptor(log),
			loggingUnaryInterceptor(log, mtr),
			middleware.RateLimitUnaryInterceptor(limiter, rateLimited, middleware.DefaultKey, func(string) {
				mtr.Rejected("rate_limited")
			}),
			authUnaryInterceptor(jwtMgr),
		),
		grpc.ChainStreamInterceptor(
			recoveryStreamInterceptor(log),
			loggingStreamInterceptor(log, mtr),
			authStreamInterceptor(jwtMgr),
		),
	)
	return opts, nil
}
