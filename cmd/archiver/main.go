package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	minioadapter "github.com/samirrijal/safetyfan/internal/adapters/minio"
	natsadapter "github.com/samirrijal/safetyfan/internal/adapters/nats"
	"github.com/samirrijal/safetyfan/internal/adapters/postgres"
	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
	"github.com/samirrijal/safetyfan/internal/pkg/config"
	"github.com/samirrijal/safetyfan/internal/pkg/logging"
	"github.com/samirrijal/safetyfan/internal/workflows"
)

const durableName = "fan-archiver"

func main() {
	cfg, err := config.Load("safetyfan-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if !cfg.Storage.Enabled {
		log.Fatal("archiver needs storage.enabled=true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store, err := minioadapter.New(ctx, minioadapter.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ArchiveFanWorkflow)
	w.RegisterActivity(&workflows.ArchiveActivities{
		Fans:      usecases.NewFanService(postgres.NewFanRepo(db), nil, nil, usecases.FanOptions{}),
		Store:     store,
		Publisher: pub,
	})

	// Bridge: every computed fan starts (at most) one archive run.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, durableName)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeFanComputed(ctx, func(ctx context.Context, event *domain.FanComputedEvent) error {
		startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		run, err := c.ExecuteWorkflow(startCtx, client.StartWorkflowOptions{
			ID:                    workflows.ArchiveWorkflowID(event.FanID),
			TaskQueue:             cfg.Temporal.TaskQueue,
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		}, workflows.ArchiveFanWorkflow, workflows.ArchiveInput{FanID: event.FanID})
		if err != nil {
			return err
		}
		slog.Info("archive started", "fan_id", event.FanID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("archiver worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
