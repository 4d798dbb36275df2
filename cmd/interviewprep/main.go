package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/interviewprep/internal/challenge"
	"github.com/pavelanni/interviewprep/internal/evaluation"
	"github.com/pavelanni/interviewprep/internal/handler"
	appI18n "github.com/pavelanni/interviewprep/internal/i18n"
	"github.com/pavelanni/interviewprep/internal/llm"
	"github.com/pavelanni/interviewprep/internal/llm/prompts"
	"github.com/pavelanni/interviewprep/internal/metrics"
	"github.com/pavelanni/interviewprep/internal/model"
	"github.com/pavelanni/interviewprep/internal/store"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "interviewprep",
		Short: "Interview practice backend with AI answer scoring and daily challenges",
	}

	serve := serveCmd()
	root.AddCommand(serve, evaluateCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `interviewprep --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func addProviderFlags(f *pflag.FlagSet) {
	f.String("llm-provider", string(llm.KindNone), "AI provider (openai, gemini, none)")
	f.String("openai-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	f.String("openai-key", "", "API key for the OpenAI-compatible endpoint")
	f.String("openai-model", "gpt-4o-mini", "OpenAI model name")
	f.String("gemini-key", "", "Gemini API key")
	f.String("gemini-model", llm.DefaultGeminiModel, "Gemini model name")
	f.Duration("llm-timeout", 60*time.Second, "Timeout for a single AI call")
	f.String("prompt-variant", string(prompts.PromptStandard), "Grading prompt variant (strict, standard, lenient)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "interviewprep.db", "SQLite database path")
	f.StringSliceP("challenges", "c", nil, "Paths to challenge JSON files imported at startup (repeatable)")
	f.StringP("lang", "l", "en", "Default language of API messages (en, ru)")
	f.String("admin-password", "", "Initial admin password (or set INTERVIEWPREP_ADMIN_PASSWORD)")
	f.Int("rate-limit", 30, "AI scoring requests per IP per minute (0 disables)")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	f.Int("max-daily-attempts", challenge.DefaultConfig().MaxDailyAttempts, "Challenge attempts allowed per user per day")
	f.Int("optimal-word-count", evaluation.DefaultConfig().OptimalWordCount, "Answer length that earns full completeness in heuristic scoring")
	addProviderFlags(f)
	addLogFlags(f)
	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a single answer and print the result as JSON",
		RunE:  runEvaluate,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "JSON file with an evaluation request (- for stdin)")
	f.StringP("question", "q", "", "Interview question")
	f.String("answer", "", "Candidate answer")
	f.String("expected", "", "Expected answer")
	f.StringSlice("key-point", nil, "Key point the answer should cover (repeatable)")
	f.String("category", "", "Question category")
	addProviderFlags(f)
	addLogFlags(f)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export interview results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "interviewprep.db", "SQLite database path")
	f.String("llm-provider", "", "Provider name included in export metadata")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(f)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("INTERVIEWPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("interviewprep")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/interviewprep")
	v.AddConfigPath("/etc/interviewprep")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// newProvider builds the AI provider once from configuration. A failed health
// check is logged, not fatal: every call falls back to heuristics anyway.
func newProvider(ctx context.Context, v *viper.Viper) (llm.Provider, error) {
	p, err := llm.New(ctx, llm.Config{
		Provider:    llm.Kind(v.GetString("llm-provider")),
		OpenAIURL:   v.GetString("openai-url"),
		OpenAIKey:   v.GetString("openai-key"),
		OpenAIModel: v.GetString("openai-model"),
		GeminiKey:   v.GetString("gemini-key"),
		GeminiModel: v.GetString("gemini-model"),
		Timeout:     v.GetDuration("llm-timeout"),
	})
	if err != nil {
		return nil, fmt.Errorf("create AI provider: %w", err)
	}
	if llm.IsNone(p) {
		slog.Info("no AI provider configured, using heuristic scoring")
		return p, nil
	}
	if err := llm.Ping(ctx, p); err != nil {
		slog.Warn("AI provider health check failed", "provider", p.Name(), "error", err)
	} else {
		slog.Info("AI provider OK", "provider", p.Name())
	}
	return p, nil
}

func promptVariant(v *viper.Viper) prompts.PromptVariant {
	variant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", variant)
		return prompts.PromptStandard
	}
	return prompts.PromptVariant(variant)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("failed to clean up expired sessions", "error", err)
	}
	if err := loadChallenges(db, v.GetStringSlice("challenges")); err != nil {
		return fmt.Errorf("load challenges: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	provider, err := newProvider(ctx, v)
	if err != nil {
		return err
	}
	evalCfg := evaluation.DefaultConfig()
	evalCfg.Variant = promptVariant(v)
	evalCfg.OptimalWordCount = v.GetInt("optimal-word-count")
	engine := evaluation.New(provider, evalCfg)

	chCfg := challenge.DefaultConfig()
	chCfg.MaxDailyAttempts = v.GetInt("max-daily-attempts")
	challenges := challenge.NewService(db, chCfg)

	metrics.Register(prometheus.DefaultRegisterer)

	h := handler.New(db, engine, challenges, handler.Config{
		RateLimit: v.GetInt("rate-limit"),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   v.GetStringSlice("cors-origins"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server",
		"addr", addr,
		"provider", provider.Name(),
		"prompt_variant", evalCfg.Variant,
		"lang", lang,
		"rate_limit", v.GetInt("rate-limit"),
		"max_daily_attempts", chCfg.MaxDailyAttempts,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var req model.EvaluationRequest
	if in := v.GetString("input"); in != "" {
		var (
			data []byte
			err  error
		)
		if in == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(in)
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
	} else {
		req = model.EvaluationRequest{
			Question:       v.GetString("question"),
			ExpectedAnswer: v.GetString("expected"),
			UserAnswer:     v.GetString("answer"),
			Category:       v.GetString("category"),
			KeyPoints:      v.GetStringSlice("key-point"),
		}
	}
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("a question is required: use --question or --input")
	}

	provider, err := newProvider(ctx, v)
	if err != nil {
		return err
	}
	cfg := evaluation.DefaultConfig()
	cfg.Variant = promptVariant(v)
	result := evaluation.New(provider, cfg).Evaluate(ctx, req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ExportAllInterviews()
	if err != nil {
		return fmt.Errorf("export interviews: %w", err)
	}

	export := model.InterviewExport{
		ExportedAt: time.Now().UTC(),
		Provider:   v.GetString("llm-provider"),
		Count:      len(results),
		Results:    results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	slog.Info("exported interviews", "count", len(results), "output", outPath)
	return nil
}

// loadChallenges imports challenge files, skipping any whose content was
// imported before.
func loadChallenges(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := challenge.FileHash(data)
		imported, err := db.IsFileImported(hash)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if imported {
			slog.Info("challenge file unchanged, skipping", "path", path)
			continue
		}

		items, err := challenge.ParseFile(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if _, err := db.ImportChallenges(hash, path, items); err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
	}
	return nil
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or INTERVIEWPREP_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
