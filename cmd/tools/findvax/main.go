// Command findvax runs the notifier by hand.
//
// Usage:
//
//	findvax notify --region MA
//	findvax megaphone --region MA --send
//	findvax subscribe --location 2f4ab6b0-... --sms 6175551234 --lang en
//	findvax registry write --path configs/activity-registry.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"findvax-notifier/internal/app"
	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/pkg/registry"
)

func main() {
	var configPath, level string

	root := &cobra.Command{
		Use:           "findvax",
		Short:         "Findvax availability notifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults to configs/config.yaml)")
	root.PersistentFlags().StringVar(&level, "log-level", "info", "Log level")

	load := func() (*config.Config, logger.Logger, error) {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadFromFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, nil, err
		}
		return cfg, logger.NewStructured(level, "console", "stderr"), nil
	}

	root.AddCommand(notifyCmd(load))
	root.AddCommand(megaphoneCmd(load))
	root.AddCommand(subscribeCmd(load))
	root.AddCommand(registryCmd(load))

	if err := root.Execute(); err != nil {
		logger.New("info", "console", "stderr").Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

type loadFunc func() (*config.Config, logger.Logger, error)

// --------------------------------------------------------------------------
// notify command
// --------------------------------------------------------------------------

func notifyCmd(load loadFunc) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Run one notification cycle for a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, app.Options{}, func(ctx context.Context, a *app.App) error {
				report, err := a.Pipeline.Run(ctx, region)
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "Region code (defaults to pipeline.default_region)")
	return cmd
}

// --------------------------------------------------------------------------
// megaphone command
// --------------------------------------------------------------------------

func megaphoneCmd(load loadFunc) *cobra.Command {
	var (
		region string
		send   bool
	)
	cmd := &cobra.Command{
		Use:   "megaphone",
		Short: "Broadcast the megaphone message to subscribers of the configured locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, app.Options{ForceMegaphoneSend: send}, func(ctx context.Context, a *app.App) error {
				report, err := a.Megaphone.Broadcast(ctx, region)
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "Region code (defaults to pipeline.default_region)")
	cmd.Flags().BoolVar(&send, "send", false, "Deliver messages instead of logging them")
	return cmd
}

// --------------------------------------------------------------------------
// subscribe command
// --------------------------------------------------------------------------

func subscribeCmd(load loadFunc) *cobra.Command {
	var location, sms, lang string
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Register a subscription through the intake validator",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(map[string]string{"location": location, "sms": sms, "lang": lang})
			if err != nil {
				return err
			}
			return withApp(load, app.Options{}, func(ctx context.Context, a *app.App) error {
				out, err := a.Intake.HandleRequest(ctx, string(body))
				if err != nil {
					return err
				}
				return printJSON(out)
			})
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "Location uuid")
	cmd.Flags().StringVar(&sms, "sms", "", "US phone number")
	cmd.Flags().StringVar(&lang, "lang", "en", "Two letter language id")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("sms")
	return cmd
}

// --------------------------------------------------------------------------
// registry command
// --------------------------------------------------------------------------

func registryCmd(load loadFunc) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Maintain the job worker activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "Path to registry file")

	cmd.AddCommand(&cobra.Command{
		Use:   "write",
		Short: "Regenerate the registry from the configured workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			reg := registry.Build(cfg)
			if err := registry.Save(reg, path); err != nil {
				return err
			}
			fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate a registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := registry.Validate(reg); err != nil {
				return err
			}
			fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	})
	return cmd
}

func withApp(load loadFunc, opts app.Options, fn func(ctx context.Context, a *app.App) error) error {
	cfg, log, err := load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.Build(ctx, cfg, log, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
