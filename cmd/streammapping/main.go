package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/api"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/config"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/lifecycle"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/logger"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/progress"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/workflow"
)

var (
	configFile   string
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
	timeout      time.Duration
	showProgress bool
)

func main() {
	logger.Init()

	rootCmd := &cobra.Command{
		Use:   "streammapping [KEY=VALUE ...]",
		Short: "Map mono input tracks onto stereo and 5.1 surround output tracks",
		Long: `streammapping configures a cloud encoding that reads a source file with one
video track and eight mono audio tracks, synthesizes a stereo and a 5.1
surround audio track from them, and muxes everything into a single MP4.

Configuration parameters are resolved from, in order: KEY=VALUE arguments,
./` + config.DefaultFileName + `, environment variables, and
~/.bitmovin/` + config.DefaultFileName + `.`,
		Args: cobra.ArbitraryArgs,
		Run:  run,
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to the local configuration file")
	rootCmd.Flags().StringVar(&baseURL, "api-url", api.DefaultBaseURL, "Base URL of the encoding service API")
	rootCmd.Flags().DurationVar(&pollInterval, "poll-interval", 5*time.Second, "Base delay between status polls")
	rootCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Maximum number of status polls (0 = unbounded)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Hour, "Overall deadline for the encoding to finish")
	rootCmd.Flags().BoolVar(&showProgress, "progress", true, "Render a console progress bar while polling")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		logger.Info("Received signal, shutting down", "main", map[string]interface{}{
			"signal": sig.String(),
		})
		cancel()
	}()

	provider, err := config.New(config.Options{
		Args:      args,
		LocalFile: configFile,
	})
	if err != nil {
		logger.Fatal("Failed to load configuration", "main", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	apiKey, err := provider.APIKey()
	if err != nil {
		logger.Fatal("Missing API key", "main", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client, err := api.New(api.Options{
		APIKey:      apiKey,
		TenantOrgID: provider.TenantOrgID(),
		BaseURL:     baseURL,
	})
	if err != nil {
		logger.Fatal("Failed to create API client", "main", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	var reporter progress.Reporter
	if showProgress {
		reporter = progress.NewReporter(progress.WithDescription("Encoding..."))
	}

	w := workflow.New(client, provider, workflow.Options{
		Progress: reporter,
		Runner: lifecycle.Options{
			PollInterval: pollInterval,
			MaxAttempts:  maxAttempts,
			Timeout:      timeout,
		},
	})

	logger.Info("Starting stream mapping workflow", "main", map[string]interface{}{
		"name": w.Name(),
	})

	result, err := w.Run(ctx)
	if err != nil {
		logger.Fatal("Workflow failed", "main", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if runErr := result.Err(); runErr != nil {
		logger.Error("Encoding did not finish", "main", map[string]interface{}{
			"outcome":  result.Outcome.String(),
			"status":   string(result.Status),
			"polls":    result.Polls,
			"messages": result.ErrorMessages,
		})
		os.Exit(1)
	}

	logger.Info("Encoding finished successfully", "main", map[string]interface{}{
		"polls": result.Polls,
	})
}
