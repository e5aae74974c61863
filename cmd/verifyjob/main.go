package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/coastlineai/sentinel/internal/config"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/pkg/logging"
)

const verifierID = "verifyjob"

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting re-verification job", "interval", cfg.VerificationJobInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err.Error())
		os.Exit(1)
	}
	defer dbPool.Close()

	loader := registry.NewPostgresStore(dbPool)
	regStore := registry.NewStore(loader, logger, registry.WithStaleAfter(cfg.VerificationStaleAfter))

	httpClient := &http.Client{Timeout: 10 * time.Second}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.VerificationJobInterval)
	defer ticker.Stop()

	runOnce(ctx, regStore, httpClient, logger)

	for {
		select {
		case <-ticker.C:
			runOnce(ctx, regStore, httpClient, logger)
		case <-stop:
			logger.Info("re-verification job stopping")
			return
		}
	}
}

// runOnce reloads the registry, walks everything due for re-verification,
// and probes reachability for channels an automated check can actually
// evaluate. Phone and text channels cannot be dialed by this job; those are
// logged so an operator can clear them through the admin API, and they stay
// due until a human does.
func runOnce(ctx context.Context, regStore *registry.Store, httpClient *http.Client, logger *logging.Logger) {
	if err := regStore.Load(ctx); err != nil {
		logger.Error("re-verification job: failed to load registry", "error", err.Error())
		return
	}

	due := regStore.DueForVerification(time.Now().UTC())
	logger.Info("re-verification job: resources due", "count", len(due))

	for _, r := range due {
		checked := false
		for _, c := range r.Channels {
			if c.Kind != registry.ChannelWebsite {
				continue
			}
			checked = true
			outcome, notes := checkWebsite(ctx, httpClient, c.Value)
			event := registry.VerificationEvent{
				ID:         uuid.NewString(),
				ResourceID: r.ID,
				AttemptAt:  time.Now().UTC(),
				VerifierID: verifierID,
				Method:     "automated_http_check",
				Outcome:    outcome,
				Notes:      notes,
			}
			if err := regStore.RecordVerification(ctx, event); err != nil {
				logger.Error("re-verification job: failed to record verification",
					"resource_id", r.ID, "error", err.Error())
			} else {
				logger.Info("re-verification job: recorded outcome",
					"resource_id", r.ID, "outcome", outcome)
			}
			break
		}
		if !checked {
			logger.Warn("re-verification job: resource has no automatically checkable channel, needs manual review",
				"resource_id", r.ID, "service_name", r.ServiceName)
		}
	}
}

func checkWebsite(ctx context.Context, client *http.Client, url string) (registry.VerificationOutcome, string) {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		return registry.OutcomeUnreachable, "build request: " + err.Error()
	}
	resp, err := client.Do(req)
	if err != nil {
		return registry.OutcomeUnreachable, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return registry.OutcomeOK, ""
	}
	return registry.OutcomeUnreachable, http.StatusText(resp.StatusCode)
}
