package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpadapter "github.com/PabloGalante/studio-agent/internal/adapters/http"
	"github.com/PabloGalante/studio-agent/internal/adapters/llm"
	"github.com/PabloGalante/studio-agent/internal/adapters/social"
	"github.com/PabloGalante/studio-agent/internal/app/completion"
	"github.com/PabloGalante/studio-agent/internal/app/intent"
	"github.com/PabloGalante/studio-agent/internal/app/prompt"
	"github.com/PabloGalante/studio-agent/internal/app/publish"
	"github.com/PabloGalante/studio-agent/internal/config"
	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	rootCmd := &cobra.Command{
		Use:          "studio-api",
		Short:        "Studio assistant API: generation and social publishing",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}

	rootCmd.PersistentFlags().String("port", "", "HTTP port (overrides STUDIO_PORT and PORT)")
	rootCmd.PersistentFlags().Bool("mock", false, "use the scripted mock LLM instead of Gemini")
	_ = v.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("use_mock_llm", rootCmd.PersistentFlags().Lookup("mock"))

	rootCmd.AddCommand(serveCmd, newAskCmd(v))
	return rootCmd
}

func newAskCmd(v *viper.Viper) *cobra.Command {
	var (
		mode      string
		maxTokens int
	)

	cmd := &cobra.Command{
		Use:   "ask [text...]",
		Short: "Run one generation and print the response JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the answer.
			observability.SetOutput(os.Stderr)

			cfg := config.FromViper(v)
			observability.SetLevel(cfg.LogLevel)

			gen, err := buildGenerator(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}

			out, err := gen.Generate(cmd.Context(), domain.Request{
				UserText:        strings.Join(args, " "),
				Mode:            domain.NormalizeMode(mode),
				MaxOutputTokens: maxTokens,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(httpadapter.NewGenerateResponse(out))
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "content mode override (e.g. dm, manager_daily, fb_copywriter)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "requested output token budget (clamped)")
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg := config.FromViper(v)
	observability.SetLevel(cfg.LogLevel)
	log := observability.Logger()

	metrics := observability.NewMetrics()

	gen, err := buildGenerator(ctx, cfg, metrics)
	if err != nil {
		return err
	}

	var facebook domain.Publisher
	if page := social.NewFacebookPage(
		cfg.Facebook.PageID,
		cfg.Facebook.AccessToken,
		cfg.Facebook.GraphURL,
		cfg.Facebook.GraphVersion,
	); page != nil {
		facebook = page
	} else {
		log.Info("facebook publishing disabled: page credentials not set")
	}
	pub := publish.NewService(facebook, metrics)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(gen, pub, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("studio api listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildGenerator picks the LLM backend and classifier. Without a key and
// without --mock the service still starts; generate requests then fail
// with a configuration error.
func buildGenerator(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*completion.Service, error) {
	log := observability.Logger()

	var client domain.LLMClient
	switch {
	case cfg.UseMockLLM:
		log.Info("using mock LLM client")
		client = llm.NewMockLLM()
	case cfg.GeminiAPIKey != "":
		gemini, err := llm.NewGeminiClient(ctx, llm.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing gemini client: %w", err)
		}
		log.Info("using gemini LLM client", "model", cfg.GeminiModel)
		client = gemini
	default:
		log.Warn("GEMINI_API_KEY not set; generate requests will fail")
	}

	var classifier domain.Classifier
	if cfg.Classifier == config.ClassifierModel && client != nil {
		classifier = intent.NewModelClassifier(client, metrics)
	}

	composer, err := prompt.NewComposer(cfg.StudioMemory)
	if err != nil {
		return nil, fmt.Errorf("loading prompt catalog: %w", err)
	}

	return completion.NewService(client, classifier, composer, cfg.Generation, metrics), nil
}
