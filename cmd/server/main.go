// Command server runs the traffic-violation authority backend. Storage
// backends are chosen from configuration: postgres + redis in production,
// in-memory fallbacks for local development.
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

	"golang.org/x/sync/errgroup"

	accountHandler "trafix/internal/account/handler"
	accountService "trafix/internal/account/service"
	accountStore "trafix/internal/account/store"
	accountMemory "trafix/internal/account/store/memory"
	accountPostgres "trafix/internal/account/store/postgres"
	"trafix/internal/account/token"
	"trafix/internal/audit"
	auditMemory "trafix/internal/audit/store/memory"
	auditPostgres "trafix/internal/audit/store/postgres"
	holderHandler "trafix/internal/holder/handler"
	holderService "trafix/internal/holder/service"
	holderStore "trafix/internal/holder/store"
	holderMemory "trafix/internal/holder/store/memory"
	holderPostgres "trafix/internal/holder/store/postgres"
	httpapi "trafix/internal/http"
	"trafix/internal/notify"
	officerHandler "trafix/internal/officer/handler"
	officerService "trafix/internal/officer/service"
	officerStore "trafix/internal/officer/store"
	officerMemory "trafix/internal/officer/store/memory"
	officerPostgres "trafix/internal/officer/store/postgres"
	"trafix/internal/platform/config"
	"trafix/internal/platform/httpserver"
	"trafix/internal/platform/logger"
	"trafix/internal/platform/metrics"
	platformPostgres "trafix/internal/platform/postgres"
	platformRedis "trafix/internal/platform/redis"
	ruleHandler "trafix/internal/rule/handler"
	ruleService "trafix/internal/rule/service"
	ruleStore "trafix/internal/rule/store"
	ruleMemory "trafix/internal/rule/store/memory"
	rulePostgres "trafix/internal/rule/store/postgres"
	"trafix/internal/verification"
	verificationMetrics "trafix/internal/verification/metrics"
	challengeStore "trafix/internal/verification/store"
	challengeMemory "trafix/internal/verification/store/memory"
	challengePostgres "trafix/internal/verification/store/postgres"
	challengeRedis "trafix/internal/verification/store/redis"
	violationHandler "trafix/internal/violation/handler"
	violationMetrics "trafix/internal/violation/metrics"
	violationService "trafix/internal/violation/service"
	violationStore "trafix/internal/violation/store"
	violationMemory "trafix/internal/violation/store/memory"
	violationPostgres "trafix/internal/violation/store/postgres"
	"trafix/pkg/platform/tx"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := platformPostgres.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Store selection: postgres when a database is configured, memory
	// otherwise. The challenge store prefers redis so consume-once holds
	// across instances.
	var (
		holders    holderStore.HolderStore
		officers   officerStore.OfficerStore
		rules      ruleStore.RuleStore
		violations violationStore.ViolationStore
		accounts   accountStore.AccountStore
		challenges challengeStore.ChallengeStore
		auditStore audit.Store
		runner     tx.Runner
	)
	if db != nil {
		holders = holderPostgres.New(db)
		officers = officerPostgres.New(db)
		rules = rulePostgres.New(db)
		violations = violationPostgres.New(db)
		accounts = accountPostgres.New(db)
		challenges = challengePostgres.New(db)
		auditStore = auditPostgres.New(db)
		runner = tx.NewSQLRunner(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		holders = holderMemory.New()
		officers = officerMemory.New()
		rules = ruleMemory.New()
		violations = violationMemory.New()
		accounts = accountMemory.New()
		challenges = challengeMemory.New()
		auditStore = auditMemory.New()
		runner = tx.NewLockRunner()
	}
	if redisClient != nil {
		challenges = challengeRedis.New(redisClient.Client)
	}

	auditor := audit.NewPublisher(auditStore, log)

	var dispatcher notify.Dispatcher
	if cfg.SMS.GatewayURL != "" {
		dispatcher, err = notify.NewSMSDispatcher(cfg.SMS)
		if err != nil {
			return err
		}
	} else {
		log.Warn("no SMS gateway configured, logging codes instead")
		dispatcher = notify.NewLogDispatcher(log)
	}

	verifier, err := verification.New(challenges,
		verification.WithLogger(log),
		verification.WithTTL(cfg.ChallengeTTL),
		verification.WithMetrics(verificationMetrics.New()),
	)
	if err != nil {
		return err
	}

	holderSvc, err := holderService.New(holders, holderService.WithLogger(log))
	if err != nil {
		return err
	}
	officerSvc, err := officerService.New(officers, officerService.WithLogger(log))
	if err != nil {
		return err
	}
	ruleSvc, err := ruleService.New(rules, ruleService.WithLogger(log))
	if err != nil {
		return err
	}
	violationSvc, err := violationService.New(violationService.Deps{
		Violations: violations,
		Holders:    holders,
		Officers:   officers,
		Rules:      rules,
		Verifier:   verifier,
		Dispatcher: dispatcher,
		Runner:     runner,
	},
		violationService.WithLogger(log),
		violationService.WithMetrics(violationMetrics.New(prometheus.DefaultRegisterer)),
		violationService.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}

	tokens, err := token.NewService(cfg.JWTSigningKey)
	if err != nil {
		return err
	}
	accountSvc, err := accountService.New(accounts, tokens,
		accountService.WithLogger(log),
		accountService.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:     log,
		Metrics:    metrics.New(),
		Validator:  tokens,
		Accounts:   accountHandler.New(accountSvc, log),
		Holders:    holderHandler.New(holderSvc, log),
		Officers:   officerHandler.New(officerSvc, log),
		Rules:      ruleHandler.New(ruleSvc, log),
		Violations: violationHandler.New(violationSvc, log),
	})
	server := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	sweeper := verification.NewSweeper(challenges, sweepInterval, log)
	group.Go(func() error {
		if err := sweeper.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer sink.Close()
		worker := audit.NewWorker(auditStore, sink, log)
		group.Go(func() error {
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return group.Wait()
}
