package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// RateRepo é a fonte autoritativa de taxas (tabela fx_rates)
type RateRepo interface {
	// RateOn busca a taxa exata da data
	RateOn(ctx context.Context, currency string, date time.Time) (decimal.Decimal, bool, error)
	// LastKnownBefore busca a taxa mais recente anterior ou igual à data
	LastKnownBefore(ctx context.Context, currency string, date time.Time) (decimal.Decimal, time.Time, bool, error)
}

// Snapshot é uma taxa EUR-por-unidade resolvida para uma data.
// Fallback=true indica que a taxa veio do mecanismo de última taxa conhecida.
type Snapshot struct {
	Currency     string
	Rate         decimal.Decimal
	Date         time.Time
	Fallback     bool
	FallbackFrom time.Time // data da taxa usada, quando Fallback
}

// Provider resolve currency->EUR para uma data, com cache Redis no caminho
// quente e fallback documentado de última taxa conhecida. Erro fatal
// (FXUnavailableError) apenas quando nunca existiu taxa para a moeda.
type Provider struct {
	log  *zap.Logger
	repo RateRepo
	rdb  *redis.Client // opcional; nil desliga o cache
	ttl  time.Duration

	OnFallback func(currency string) // métricas
}

// NewProvider instancia o provider de snapshots de câmbio
func NewProvider(log *zap.Logger, repo RateRepo, rdb *redis.Client, ttl time.Duration) *Provider {
	return &Provider{log: log, repo: repo, rdb: rdb, ttl: ttl}
}

// Rate resolve a taxa EUR-por-unidade de uma moeda para a data dada.
// EUR é identidade 1 e nunca toca storage.
func (p *Provider) Rate(ctx context.Context, currency string, date time.Time) (Snapshot, error) {
	day := date.UTC().Truncate(24 * time.Hour)

	if currency == "EUR" {
		return Snapshot{Currency: "EUR", Rate: decimal.NewFromInt(1), Date: day}, nil
	}

	key := fmt.Sprintf("fx:%s:%s", currency, day.Format("2006-01-02"))
	if p.rdb != nil {
		if val, err := p.rdb.Get(ctx, key).Result(); err == nil {
			if rate, derr := decimal.NewFromString(val); derr == nil {
				return Snapshot{Currency: currency, Rate: rate, Date: day}, nil
			}
		}
	}

	rate, ok, err := p.repo.RateOn(ctx, currency, day)
	if err != nil {
		return Snapshot{}, &domain.PersistenceError{Op: "fx rate lookup", Err: err}
	}
	if ok {
		p.cache(ctx, key, rate)
		return Snapshot{Currency: currency, Rate: rate, Date: day}, nil
	}

	// Fallback: última taxa conhecida antes da data. Warning, nunca fatal.
	rate, from, ok, err := p.repo.LastKnownBefore(ctx, currency, day)
	if err != nil {
		return Snapshot{}, &domain.PersistenceError{Op: "fx fallback lookup", Err: err}
	}
	if !ok {
		return Snapshot{}, &domain.FXUnavailableError{Currency: currency}
	}

	p.log.Warn("fx rate fallback to last known",
		zap.String("currency", currency),
		zap.String("wanted", day.Format("2006-01-02")),
		zap.String("using", from.Format("2006-01-02")),
	)
	if p.OnFallback != nil {
		p.OnFallback(currency)
	}

	return Snapshot{Currency: currency, Rate: rate, Date: day, Fallback: true, FallbackFrom: from}, nil
}

// cache grava a taxa no Redis com TTL; falha de cache não derruba a operação
func (p *Provider) cache(ctx context.Context, key string, rate decimal.Decimal) {
	if p.rdb == nil {
		return
	}
	if err := p.rdb.Set(ctx, key, rate.String(), p.ttl).Err(); err != nil {
		p.log.Warn("fx cache set failed", zap.Error(err))
	}
}
