// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hr-assistant/internal/api"
	commonaws "hr-assistant/internal/common/aws"
	"hr-assistant/internal/common/camunda"
	"hr-assistant/internal/common/config"
	"hr-assistant/internal/common/database"
	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/common/observability"
	"hr-assistant/pkg/registry"

	qus "hr-assistant/internal/workers/data-access/query-user-store"
	sp "hr-assistant/internal/workers/data-access/search-policies"
	ci "hr-assistant/internal/workers/hr-assistant/classify-intent"
	hq "hr-assistant/internal/workers/hr-assistant/handle-query"
	it "hr-assistant/internal/workers/hr-assistant/invoke-tool"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting HR assistant worker manager...", zap.String("version", cfg.App.Version))

	obs := observability.New("hr-assistant", zapLog)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- PostgreSQL (user store) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.EnsureUsersTable(ctx, cfg.Database.Postgres.UsersTable); err != nil {
		zapLog.Fatal("failed to prepare users table", zap.Error(err))
	}
	userStore, err := qus.NewStore(pg.DB, cfg.Database.Postgres.UsersTable)
	if err != nil {
		zapLog.Fatal("invalid users table", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	readiness := map[string]api.Pinger{"postgres": userStore}

	// --- Elasticsearch (policy index, optional) ---
	var policyIndex *sp.PolicyIndex
	if cfg.Database.Elasticsearch.Enabled() {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		policyIndex = sp.NewPolicyIndex(esClient.Client, cfg.Database.Elasticsearch.PolicyIndex)
		readiness["elasticsearch"] = policyIndex
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", policyIndex.Name()))
	} else {
		zapLog.Info("no policy index configured, policy questions use the tool path")
	}

	// --- Language model and embeddings ---
	llmClient := llm.NewClient(cfg.LLM, cfg.Embedding)
	var embedder llm.Embedder = llmClient

	if cfg.Database.Redis.Address != "" && cfg.Embedding.CacheTTL > 0 {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			embedder = llm.NewCachedEmbedder(llmClient, rc.Client, cfg.Embedding.Model,
				time.Duration(cfg.Embedding.CacheTTL)*time.Second, log)
			readiness["redis"] = rc
			zapLog.Info("Redis connected successfully")
		}
	}

	catalog, err := registry.LoadOrDefault(cfg.Tools.RegistryPath)
	if err != nil {
		zapLog.Fatal("failed to load tool catalog", zap.Error(err))
	}

	// --- Intent resolution ---
	ciLog := &classifyIntentLoggerAdapter{log}
	callTimeout := config.GetDuration(cfg.Assistant.CallTimeout)

	similarity, err := ci.NewSimilarityClassifier(ctx, embedder, ci.IntentExamples, cfg.Assistant.SimilarityThreshold)
	if err != nil {
		// The resolver falls back to the language model for every query.
		zapLog.Warn("similarity classifier unavailable", zap.Error(err))
		similarity = nil
	}
	resolver := ci.NewResolver(similarity, ci.NewGenerativeClassifier(llmClient, ciLog), callTimeout, ciLog)

	// --- Tool path ---
	itLog := &invokeToolLoggerAdapter{log}
	itCfg := &it.Config{
		Endpoint:            cfg.MCP.Endpoint,
		Transport:           cfg.MCP.Transport,
		Timeout:             config.GetDuration(cfg.MCP.Timeout),
		CallTimeout:         callTimeout,
		DefaultLeaveBalance: cfg.Assistant.DefaultLeaveBalance,
		DefaultTotalLeaves:  cfg.Assistant.DefaultTotalLeaves,
	}
	transport, err := it.HTTPTransport(itCfg.Endpoint, itCfg.Transport, itCfg.Timeout)
	if err != nil {
		zapLog.Fatal("invalid MCP transport", zap.Error(err))
	}
	toolPath := it.NewToolPath(
		llmClient, catalog,
		it.NewMCPExecutor(transport, cfg.App.Version, itLog),
		it.Defaults{LeaveBalance: itCfg.DefaultLeaveBalance, TotalLeaves: itCfg.DefaultTotalLeaves},
		callTimeout, itLog,
	).WithRecorder(obs)

	if cfg.Notifications.SNS.Enabled {
		snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.SNS.Region)
		if err != nil {
			zapLog.Warn("SNS client unavailable, tool audit disabled", zap.Error(err))
		} else {
			toolPath.WithAuditor(commonaws.NewAuditPublisher(snsClient, cfg.Notifications.SNS.TopicARN))
			zapLog.Info("tool audit events enabled", zap.String("topic", cfg.Notifications.SNS.TopicARN))
		}
	}

	// --- Pipeline ---
	hqLog := &handleQueryLoggerAdapter{log}
	hqCfg := &hq.Config{
		Timeout:        config.GetDuration(cfg.API.RequestTimeout),
		CallTimeout:    callTimeout,
		RetrievalK:     cfg.Assistant.RetrievalK,
		MaxCharsPerDoc: cfg.Assistant.MaxCharsPerDoc,
		MaxTotalChars:  cfg.Assistant.MaxTotalChars,
	}
	var policies hq.PolicyIndex
	if policyIndex != nil {
		policies = policyIndex
	}
	router := hq.NewRouter(hqCfg, llmClient, userStore, policies, toolPath, hqLog)
	pipeline := hq.NewPipeline(resolver, router, hqLog).WithRecorder(obs)

	// --- Zeebe workers ---
	var workers []*camunda.CamundaWorker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		start := func(taskType string, handle camunda.JobHandlerFunc) {
			wcfg := config.GetWorkerConfig(cfg, taskType)
			if !wcfg.Enabled {
				zapLog.Info("worker disabled", zap.String("taskType", taskType))
				return
			}
			w := camunda.NewWorker(zeebe.GetClient(), taskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handle, zapLog)
			w.Start()
			workers = append(workers, w)
		}

		start(ci.TaskType, ci.NewHandler(&ci.Config{
			Timeout: config.GetDuration(config.GetWorkerConfig(cfg, ci.TaskType).Timeout),
		}, resolver, ciLog).Handle)

		start(hq.TaskType, hq.NewHandler(hqCfg, pipeline, hqLog).Handle)

		start(it.TaskType, it.NewHandler(itCfg, toolPath, itLog).Handle)

		start(qus.TaskType, qus.NewHandler(&qus.Config{
			Timeout: config.GetDuration(config.GetWorkerConfig(cfg, qus.TaskType).Timeout),
			Table:   cfg.Database.Postgres.UsersTable,
		}, userStore, log).Handle)

		if policyIndex != nil {
			start(sp.TaskType, sp.NewHandler(&sp.Config{
				Timeout: config.GetDuration(config.GetWorkerConfig(cfg, sp.TaskType).Timeout),
				Index:   policyIndex.Name(),
			}, policyIndex, log).Handle)
		}

		zapLog.Info("workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	server := api.NewServer(cfg.API, pipeline, readiness, obs, zapLog)
	go func() {
		if err := server.Start(); err != nil {
			zapLog.Fatal("HTTP API failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP API", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// Logger adapters for workers that declare their own Logger interfaces
type classifyIntentLoggerAdapter struct {
	logger.Logger
}

func (a *classifyIntentLoggerAdapter) With(fields map[string]interface{}) ci.Logger {
	return &classifyIntentLoggerAdapter{a.Logger.With(fields)}
}

type invokeToolLoggerAdapter struct {
	logger.Logger
}

func (a *invokeToolLoggerAdapter) With(fields map[string]interface{}) it.Logger {
	return &invokeToolLoggerAdapter{a.Logger.With(fields)}
}

type handleQueryLoggerAdapter struct {
	logger.Logger
}

func (a *handleQueryLoggerAdapter) With(fields map[string]interface{}) hq.Logger {
	return &handleQueryLoggerAdapter{a.Logger.With(fields)}
}
