package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clova-webhook/clova"
	"clova-webhook/handler"
	appconfig "clova-webhook/internal/config"
	"clova-webhook/internal/integrations/paramstore"
	"clova-webhook/internal/metrics"
	"clova-webhook/internal/repository"
	"clova-webhook/internal/skill"
	"clova-webhook/internal/templates"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = appconfig.DefaultPath
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		slog.Error("failed to load config", "path", path, "err", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ---- AWS-backed settings and templates ----
	appIDs := cfg.ApplicationIDs
	var tplSource templates.Source
	if cfg.ParamPrefix != "" || cfg.TemplateTable != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		if cfg.ParamPrefix != "" {
			ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				logger.Error("failed to create SSM client", "err", err)
				os.Exit(1)
			}
			ids, err := ssmClient.ApplicationIDs(ctx, cfg.ParamPrefix)
			if err != nil {
				logger.Error("failed to load application ids", "prefix", cfg.ParamPrefix, "err", err)
				os.Exit(1)
			}
			appIDs = append(appIDs, ids...)
		}
		if cfg.TemplateTable != "" {
			repo, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.TemplateTable)
			if err != nil {
				logger.Error("failed to create template client", "err", err)
				os.Exit(1)
			}
			if cfg.SeedTemplates {
				if err := seedTemplates(ctx, repo, cfg.TemplatesPath, logger); err != nil {
					logger.Error("failed to seed templates", "table", cfg.TemplateTable, "path", cfg.TemplatesPath, "err", err)
					os.Exit(1)
				}
			}
			tplSource = repo
		}
	}
	if tplSource == nil {
		tplSource, err = templates.NewFile(cfg.TemplatesPath, logger)
		if err != nil {
			logger.Error("failed to load templates", "path", cfg.TemplatesPath, "err", err)
			os.Exit(1)
		}
	}
	renderer, err := templates.NewRenderer(tplSource)
	if err != nil {
		logger.Error("failed to create template renderer", "err", err)
		os.Exit(1)
	}

	// ---- Extension ----
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ext := clova.New(
		clova.WithLogger(logger),
		clova.WithApplicationIDs(appIDs...),
		clova.WithVerifyRequests(cfg.VerifyRequests),
		clova.WithPrettyDebugLogs(cfg.PrettyDebugLogs),
		clova.WithDefaultLang(cfg.DefaultLang),
		clova.WithObserver(metrics.New(registry)),
	)
	switch cfg.Skill {
	case appconfig.SkillColor:
		err = skill.Color(ext, renderer)
	case appconfig.SkillMagicBall:
		err = skill.MagicBall(ext, nil)
	default:
		err = skill.Dice(ext, nil)
	}
	if err != nil {
		logger.Error("failed to register skill", "skill", cfg.Skill, "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(ext, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(h.Handle)
		return
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(cfg.Route, h, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := serve(srv, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// seedTemplates copies every template in path into the DynamoDB table.
func seedTemplates(ctx context.Context, repo *repository.Client, path string, logger *slog.Logger) error {
	file, err := templates.NewFile(path, logger)
	if err != nil {
		return err
	}
	tpls, err := file.All(ctx)
	if err != nil {
		return err
	}
	if err := repo.Seed(ctx, tpls); err != nil {
		return err
	}
	logger.Info("templates seeded", "count", len(tpls))
	return nil
}

func serve(srv *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
