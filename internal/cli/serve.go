package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flowerShopCRM/internal/db"
	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/events"
	grpcserver "flowerShopCRM/internal/grpc"
	"flowerShopCRM/internal/logging"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var dev bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runServe(ctx, rootOpts, dev)
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "fall back to the development JWT secret")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, dev bool) error {
	cfg, err := opts.loadConfig(!dev)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Infof("configuration loaded: %v", cfg)

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.WithError(err).Warn("close db")
		}
	}()

	var pub events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.WithField("topic", cfg.Kafka.Topic).Info("publishing events to kafka")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.WithError(err).Warn("close publisher")
		}
	}()

	shutdown, err := grpcserver.StartGRPC(cfg, grpcserver.Deps{
		DB:     d,
		Labels: display.New(cfg.Locale),
		Events: pub,
		Log:    logger,
	})
	if err != nil {
		return fmt.Errorf("start grpc: %w", err)
	}
	logger.Infof("gRPC server listening on %s", cfg.GRPC.Address)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(sctx); err != nil {
		logger.WithError(err).Error("shutdown")
		return err
	}
	return nil
}
