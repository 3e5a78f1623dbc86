package main

import (
	"context"
	"fmt"
	"os"

	"befit/fitness-app/internal/client"
	"befit/fitness-app/internal/config"
	"befit/fitness-app/internal/localstore"
	"befit/fitness-app/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "befit",
		Short:         "Train with your befit routine from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing befit.yaml")

	root.AddCommand(newRegisterCmd(&configDir))
	root.AddCommand(newLoginCmd(&configDir))
	root.AddCommand(newLogoutCmd(&configDir))
	root.AddCommand(newRoutineCmd(&configDir))
	root.AddCommand(newGenerateCmd(&configDir))
	root.AddCommand(newRestCmd(&configDir))
	root.AddCommand(newWorkoutCmd(&configDir))
	root.AddCommand(newHistoryCmd(&configDir))
	root.AddCommand(newStatsCmd(&configDir))
	root.AddCommand(newReportCmd(&configDir))
	root.AddCommand(newSyncCmd(&configDir))
	return root
}

// app bundles what every command needs: config, the local store and an
// authenticated API client.
type app struct {
	cfg   config.ClientConfig
	store *localstore.Store
	api   *client.Client
}

func loadApp(configDir string) (*app, error) {
	cfg, err := config.LoadClientConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File, Prefix: "befit"}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := localstore.Open(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	api := client.New(cfg.API.URL, cfg.API.Timeout)
	token, err := store.Token(context.Background())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	api.SetToken(token)

	return &app{cfg: cfg, store: store, api: api}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("closing local store", "error", err)
	}
}

// withApp opens the app for the duration of fn.
func withApp(configDir string, fn func(a *app) error) error {
	a, err := loadApp(configDir)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
