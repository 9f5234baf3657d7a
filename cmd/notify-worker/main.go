package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/shared/config"
	"github.com/radieske/surebet-ledger/internal/shared/db"
	"github.com/radieske/surebet-ledger/internal/shared/kafka"
	"github.com/radieske/surebet-ledger/internal/shared/logger"
	"github.com/radieske/surebet-ledger/internal/shared/metrics"
	ev "github.com/radieske/surebet-ledger/pkg/contracts/events"
)

var (
	notifiedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surebet_notifications_total",
		Help: "Pedidos de notificação processados",
	})
	dlqTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surebet_notifications_dlq_total",
		Help: "Pedidos de notificação enviados para a DLQ",
	})
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(notifiedTotal, dlqTotal)

	// Postgres: resolve os destinatários do lado pedido
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: pedidos manuais de notificação vindos da API
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicNotify, "notify-worker")
	defer reader.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicNotifyDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicNotifyDLQ)
		defer dlqWriter.Close()
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("notify-worker started", zap.String("consume", cfg.TopicNotify))

	ctx := context.Background()

	// Loop principal: consome pedidos, resolve destinatários e registra a
	// entrega. O transporte real (chat) fica fora deste serviço; o log
	// estruturado é o handoff.
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var req ev.SurebetNotify
		if jerr := json.Unmarshal(msg.Value, &req); jerr != nil {
			log.Error("unmarshal surebet_notify", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
				dlqTotal.Inc()
			}
			continue
		}

		if err := processOne(ctx, log, pg, &req); err != nil {
			log.Error("process notify", zap.String("surebetId", req.SurebetID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, req.SurebetID, msg.Value)
				dlqTotal.Inc()
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne resolve os associados do lado pedido e registra um log de
// entrega por destinatário
func processOne(ctx context.Context, log *zap.Logger, pg *sql.DB, req *ev.SurebetNotify) error {
	recipients, err := recipientsForSide(ctx, pg, req.SurebetID, req.Side)
	if err != nil {
		return err
	}

	for _, r := range recipients {
		log.Info("notification delivery",
			zap.String("surebetId", req.SurebetID),
			zap.String("side", req.Side),
			zap.String("associateId", r.id),
			zap.String("associate", r.name),
			zap.Int("screenshots", len(req.ScreenshotRefs)),
			zap.String("requestedBy", req.RequestedBy),
		)
	}
	notifiedTotal.Inc()
	return nil
}

type recipient struct {
	id   string
	name string
}

func recipientsForSide(ctx context.Context, pg *sql.DB, surebetID, side string) ([]recipient, error) {
	rows, err := pg.QueryContext(ctx, `
		SELECT DISTINCT a.id, a.name
		FROM surebet_participants sp
		JOIN bets b ON b.id = sp.bet_id
		JOIN associates a ON a.id = b.associate_id
		WHERE sp.surebet_id = $1 AND sp.side = $2`, surebetID, side)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recipient
	for rows.Next() {
		var r recipient
		if err := rows.Scan(&r.id, &r.name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
