package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/shared/cache"
	"github.com/radieske/surebet-ledger/internal/shared/config"
	"github.com/radieske/surebet-ledger/internal/shared/db"
	"github.com/radieske/surebet-ledger/internal/shared/kafka"
	"github.com/radieske/surebet-ledger/internal/shared/logger"
	"github.com/radieske/surebet-ledger/internal/shared/metrics"
	"github.com/radieske/surebet-ledger/internal/surebet-service/correction"
	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/fx"
	shttp "github.com/radieske/surebet-ledger/internal/surebet-service/http"
	"github.com/radieske/surebet-ledger/internal/surebet-service/ledger"
	"github.com/radieske/surebet-ledger/internal/surebet-service/matching"
	"github.com/radieske/surebet-ledger/internal/surebet-service/producer"
	"github.com/radieske/surebet-ledger/internal/surebet-service/reconciliation"
	"github.com/radieske/surebet-ledger/internal/surebet-service/repo"
	"github.com/radieske/surebet-ledger/internal/surebet-service/risk"
	"github.com/radieske/surebet-ledger/internal/surebet-service/settlement"
)

var (
	matchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surebet_bets_matched_total",
		Help: "Apostas vinculadas a uma surebet pelo matching",
	})
	surebetsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surebet_surebets_created_total",
		Help: "Surebets novas criadas pelo matching",
	})
	settlementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surebet_settlements_committed_total",
		Help: "Batches de settlement confirmados",
	})
	adjustmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "surebet_ledger_adjustments_total",
		Help: "Depósitos, retiradas e correções aplicados",
	}, []string{"type"})
	fxFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "surebet_fx_fallback_total",
		Help: "Resoluções de câmbio que caíram na última taxa conhecida",
	}, []string{"currency"})
)

// adminResolver prefere o id pinado em ADMIN_ASSOCIATE_ID; sem ele,
// resolve pela flag is_admin no banco
type adminResolver struct {
	id   string
	repo *repo.Postgres
}

func (a adminResolver) AdminAssociate(ctx context.Context) (domain.Associate, error) {
	if a.id != "" {
		return a.repo.GetAssociate(ctx, a.id)
	}
	return a.repo.AdminAssociate(ctx)
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(matchesTotal, surebetsCreatedTotal,
		settlementsTotal, adjustmentsTotal, fxFallbackTotal)

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de FX e risco; nil desliga o cache)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}

	// Kafka writer (tópico surebet_notify)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicNotify)
	defer writer.Close()

	// deps
	repository := repo.NewPostgres(pg)
	ledgerStore := ledger.NewPostgres(pg)
	fxRepo := fx.NewPostgres(pg)

	fxProv := fx.NewProvider(log, fxRepo, rdb, cfg.FXCacheTTL)
	fxProv.OnFallback = func(currency string) {
		fxFallbackTotal.WithLabelValues(currency).Inc()
	}

	matcher := matching.NewEngine(log, repository)
	matcher.OnMatch = func(created bool) {
		matchesTotal.Inc()
		if created {
			surebetsCreatedTotal.Inc()
		}
	}

	classifier := risk.NewClassifier(log, repository, fxProv, rdb, cfg.FXCacheTTL, cfg.RiskROISafePct)

	settler := settlement.NewEngine(log, repository, fxProv,
		adminResolver{id: cfg.AdminAssociateID, repo: repository})
	settler.OnCommit = func() { settlementsTotal.Inc() }

	corrector := correction.NewCorrector(log, ledgerStore, fxProv, repository)
	corrector.OnApply = func(entryType string) {
		adjustmentsTotal.WithLabelValues(entryType).Inc()
	}

	reconciler := reconciliation.NewEngine(log, ledgerStore, repository,
		cfg.ReconOverholdEUR, cfg.ReconShortEUR)

	notifier := producer.NewNotifyPublisher(writer, cfg.TopicNotify)

	// HTTP da API do operador
	api := shttp.NewServer(log, repository, ledgerStore, matcher, classifier,
		settler, corrector, reconciler, fxRepo, notifier)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})

	log.Info("surebet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
