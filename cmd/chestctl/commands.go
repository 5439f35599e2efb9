package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/app"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/config"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/db"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/logger"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

var timeoutFlag time.Duration

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chestctl",
		Short:         "Maintenance commands for the chit chest store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().DurationVarP(&timeoutFlag, "timeout", "t", time.Minute, "Overall deadline for the command")

	rootCmd.AddCommand(
		indexesCmd(),
		sweepCmd(),
		recoverCmd(),
		chestCmd(),
	)
	return rootCmd
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store != config.StoreMongo {
				return fmt.Errorf("indexes requires CHEST_STORE=%s", config.StoreMongo)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
			defer cancel()

			client, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close(context.Background()) }()

			if err := client.CreateIndexes(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "indexes ready on %s\n", cfg.MongoDatabase)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Promote every active chest past its deadline to unlockable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) error {
				n, err := svc.SweepDue(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "promoted %d chests\n", n)
				return nil
			})
		},
	}
}

func recoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover-pairings",
		Short: "Finish or roll back pairings left half-written by a crash",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) error {
				n, err := svc.RecoverPairings(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "committed %d pairings\n", n)
				return nil
			})
		},
	}
}

func chestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chest CHEST_ID",
		Short: "Show the unlock state of a chest, promoting it when due",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) error {
				res, err := svc.CheckUnlockable(ctx, args[0])
				if err != nil {
					return err
				}
				out := map[string]interface{}{
					"chest_id":       args[0],
					"status":         res.Status,
					"is_unlockable":  res.IsUnlockable,
					"days_remaining": res.DaysRemaining,
					"unlock_at":      res.UnlockAt.Format(time.RFC3339),
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			})
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withService opens the configured backend, runs fn and closes it again.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), "chestctl", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	backend, err := app.Open(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "open backend")
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing backend")
		}
	}()

	deps := backend.Deps
	deps.Logger = log.Level(zerolog.WarnLevel)
	return fn(ctx, service.New(deps))
}
