package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coastlineai/sentinel/cmd/mainconfig"
	appconfig "github.com/coastlineai/sentinel/internal/config"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/internal/training"
	"github.com/coastlineai/sentinel/pkg/logging"
)

// sqsAPI is the subset of the SQS client the worker needs.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dataset ingest worker", "queue", cfg.IngestQueueURL, "output", cfg.IngestOutputPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err.Error())
		os.Exit(1)
	}
	sqsClient := sqs.NewFromConfig(awsCfg)

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer dbPool.Close()

	loader := registry.NewPostgresStore(dbPool)
	regStore := registry.NewStore(loader, logger, registry.WithStaleAfter(cfg.VerificationStaleAfter))
	if err := regStore.Load(ctx); err != nil {
		logger.Error("failed to load registry, continuing with an empty fabrication check", "error", err.Error())
	}

	out, err := os.OpenFile(cfg.IngestOutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Error("failed to open ingest output file", "path", cfg.IngestOutputPath, "error", err.Error())
		os.Exit(1)
	}
	defer out.Close()

	w := &worker{
		sqs:      sqsClient,
		queueURL: cfg.IngestQueueURL,
		waitSecs: cfg.IngestPollWaitSecs,
		registry: regStore,
		out:      out,
		logger:   logger,
	}

	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down ingest worker...")
	cancel()

	select {
	case <-done:
		logger.Info("ingest worker stopped")
	case <-time.After(30 * time.Second):
		logger.Error("ingest worker shutdown timed out")
	}
}

// worker polls the ingest queue for batches of externally sourced crisis
// corpus records, runs them through the ingest and validation pipeline, and
// appends what passes to the output corpus file. One malformed message
// never blocks the rest of the queue: it is logged and deleted like any
// other processed message so a bad producer can't wedge the worker.
type worker struct {
	sqs      sqsAPI
	queueURL string
	waitSecs int32
	registry *registry.Store
	out      *os.File
	logger   *logging.Logger
}

// ingestMessage is the wire shape the queue producer publishes: a batch of
// externally sourced records to normalize and validate together.
type ingestMessage struct {
	Records []training.ExternalRecord `json:"records"`
}

func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out, err := w.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            &w.queueURL,
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     w.waitSecs,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("receive message failed", "error", err.Error())
			continue
		}

		for _, msg := range out.Messages {
			w.process(ctx, msg)
		}
	}
}

func (w *worker) process(ctx context.Context, msg sqstypes.Message) {
	var body ingestMessage
	if err := json.Unmarshal([]byte(*msg.Body), &body); err != nil {
		w.logger.Error("discarding malformed ingest message", "error", err.Error())
		w.delete(ctx, msg)
		return
	}

	examples := training.IngestExternal(body.Records)
	examples = training.Normalize(examples)
	report := training.Validate(examples, w.registry)

	if !report.Passed() {
		w.logger.Warn("ingest batch failed validation, skipping",
			"record_count", len(body.Records),
			"failure_count", len(report.Failures),
		)
		w.delete(ctx, msg)
		return
	}
	for _, warning := range report.Warnings {
		w.logger.Warn("ingest batch validation warning", "warning", warning)
	}

	if err := training.WriteJSONL(w.out, examples); err != nil {
		w.logger.Error("failed to append ingested examples, leaving message for retry", "error", err.Error())
		return
	}

	w.logger.Info("ingested batch", "record_count", len(body.Records), "example_count", len(examples))
	w.delete(ctx, msg)
}

func (w *worker) delete(ctx context.Context, msg sqstypes.Message) {
	if _, err := w.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &w.queueURL,
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		w.logger.Error("failed to delete processed message", "error", err.Error())
	}
}
