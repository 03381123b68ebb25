package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	mongostore "github.com/hourbook/billing/internal/infrastructure/db/mongo"
	"github.com/hourbook/billing/internal/pkg/config"
	"github.com/hourbook/billing/pkg/logger"
)

const serviceName = "billingd"

// runtime is what every subcommand shares once the root pre-run has loaded it.
type runtime struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Freelancer time tracking and invoicing service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logger.Init(logger.Options{
				Level:       cfg.LogLevel,
				Pretty:      !cfg.IsProduction(),
				Service:     serviceName,
				Environment: cfg.Env,
			})
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(rt),
		newCascadeRateCmd(rt),
		newMigrateCmd(rt),
		newTokenCmd(rt),
	)
	return root
}

// openStore connects to MongoDB. The returned func disconnects the client.
func (rt *runtime) openStore(ctx context.Context) (*mongostore.Store, *mongo.Database, func(), error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      rt.cfg.Mongo.URI,
		Database: rt.cfg.Mongo.Database,
		Timeout:  rt.cfg.Mongo.Timeout,
		AppName:  serviceName,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			rt.log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
	return mongostore.NewStore(db), db, closeFn, nil
}
