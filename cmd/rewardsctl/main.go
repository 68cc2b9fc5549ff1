package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rewards-optimizer-go/internal/app"
	"rewards-optimizer-go/internal/config"
	"rewards-optimizer-go/internal/events"
	"rewards-optimizer-go/internal/logging"
	"rewards-optimizer-go/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "rewardsctl",
		Short:        "Operate the card rewards optimizer from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load(".env")
			c.cfg = config.Load()
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(c.cfg.LogLevel, "console")
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app != nil {
				return c.app.Close()
			}
			return nil
		},
	}

	root.AddCommand(c.seedCmd(), c.recommendCmd(), c.summaryCmd(), c.watchCmd())
	return root
}

func (c *cli) build(ctx context.Context) (*app.App, error) {
	a, err := app.Build(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the merchant catalog and demo accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.SeedCatalog(cmd.Context(), file)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog YAML file (default: built-in catalog)")
	return cmd
}

func (c *cli) recommendCmd() *cobra.Command {
	var (
		user     string
		merchant string
		amount   float64
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show the best card for a purchase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.Service.UserByLogin(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("user %q: %w", user, err)
			}
			var purchase *float64
			if cmd.Flags().Changed("amount") {
				purchase = &amount
			}
			rec, err := a.Service.Recommend(cmd.Context(), u.ID, merchant, purchase)
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username or email")
	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name")
	cmd.Flags().Float64Var(&amount, "amount", 0, "purchase amount (default: DEFAULT_PURCHASE_AMOUNT)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("merchant")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	var (
		user   string
		period string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show earned and missed rewards for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.Service.UserByLogin(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("user %q: %w", user, err)
			}
			r, err := storage.ParsePeriod(period, "", "", a.Service.Now())
			if err != nil {
				return err
			}
			s, err := a.Service.Summary(cmd.Context(), u.ID, r)
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username or email")
	cmd.Flags().StringVar(&period, "period", "all", "week, month, year or all")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// watchCmd tails transaction events from the configured AMQP queue.
func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print transaction events as they are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is not set")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer, err := events.NewAMQPPublisher(events.AMQPConfig{
				URL:        c.cfg.AMQPURL,
				Exchange:   c.cfg.AMQPExchange,
				RoutingKey: c.cfg.AMQPRoutingKey,
			}, c.logger.Named(logging.ComponentEvents))
			if err != nil {
				return err
			}
			defer consumer.Close()

			err = consumer.ConsumeTransactionRecorded(ctx, func(msg *events.TransactionRecordedMessage) error {
				return printJSON(cmd, msg)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
