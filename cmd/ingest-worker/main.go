// Package main 文档索引 Worker 入口，消费 Redis Stream 中的索引任务
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"knowledge-navigator-api/internal/application/ingest"
	"knowledge-navigator-api/internal/config"
	infraembedding "knowledge-navigator-api/internal/infrastructure/embedding"
	"knowledge-navigator-api/internal/infrastructure/messaging"
	"knowledge-navigator-api/internal/infrastructure/persistence/milvus"
	"knowledge-navigator-api/internal/infrastructure/persistence/redis"
	einoobs "knowledge-navigator-api/internal/observability/eino"
	"knowledge-navigator-api/pkg/logger"
	"knowledge-navigator-api/pkg/metrics"
	"knowledge-navigator-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting ingest-worker",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName:    "ingest-worker",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Env,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	einoobs.Init()

	// Worker 依赖消息队列，Redis 不可达时直接退出
	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to connect redis", err)
	}
	defer redisClient.Close()

	// 向量索引链路：Milvus + Embedder 缺一不可
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to connect milvus", err)
	}
	defer milvusClient.Close()
	vectorRepo := milvus.NewRepository(milvusClient)

	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to init embedder", err)
	}
	if cfg.Embedding.CacheTTL > 0 {
		cache := redis.NewCache(redisClient)
		embedder = infraembedding.NewCachedEmbedder(embedder, cache, cfg.Embedding.Model, cfg.Embedding.CacheTTL)
	}

	indexer := ingest.NewIndexer(
		embedder,
		vectorRepo,
		cfg.Ingest.ChunkSizeRunes,
		cfg.Ingest.ChunkOverlapRunes,
		cfg.Ingest.EmbeddingBatch,
	)

	consumerName := cfg.Messaging.ConsumerName
	if consumerName == "" {
		consumerName = hostnameConsumerName()
	}
	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamIngestJobs,
		Group:        cfg.Messaging.ConsumerGroup,
		ConsumerName: consumerName,
	})

	consumer.RegisterHandler(messaging.MessageTypeIndexDocument, func(ctx context.Context, msg *messaging.Message) error {
		var job messaging.IngestJobMessage
		if err := msg.UnmarshalPayload(&job); err != nil {
			return fmt.Errorf("invalid index job payload: %w", err)
		}

		doc := &ingest.DocumentInput{
			SourceID: job.SourceID,
			Pages:    toPageInputs(job.Pages),
		}
		chunks, err := indexer.IndexDocument(ctx, doc)
		if err != nil {
			metrics.IngestJobsTotal.WithLabelValues("error").Inc()
			return err
		}

		metrics.IngestJobsTotal.WithLabelValues("ok").Inc()
		logger.Info(ctx, "document indexed",
			"source_id", job.SourceID,
			"job_id", job.JobID,
			"chunks", chunks,
		)
		return nil
	})

	consumer.RegisterHandler(messaging.MessageTypeDeleteDocument, func(ctx context.Context, msg *messaging.Message) error {
		var job messaging.IngestJobMessage
		if err := msg.UnmarshalPayload(&job); err != nil {
			return fmt.Errorf("invalid delete job payload: %w", err)
		}

		if err := indexer.DeleteDocument(ctx, job.SourceID); err != nil {
			metrics.IngestJobsTotal.WithLabelValues("error").Inc()
			return err
		}

		metrics.IngestJobsTotal.WithLabelValues("ok").Inc()
		logger.Info(ctx, "document deleted", "source_id", job.SourceID, "job_id", job.JobID)
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(ctx, 100)

	log.Info("ingest-worker started",
		"stream", string(messaging.StreamIngestJobs),
		"group", cfg.Messaging.ConsumerGroup,
		"consumer", consumerName,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down ingest-worker...")
	consumer.Stop()
	log.Info("ingest-worker exited")
}

func toPageInputs(pages []messaging.DocumentPage) []ingest.PageInput {
	out := make([]ingest.PageInput, len(pages))
	for i, p := range pages {
		out[i] = ingest.PageInput{
			Page:     p.Page,
			Text:     p.Text,
			Sections: p.Sections,
			Tables:   p.Tables,
		}
	}
	return out
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
