package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/fx"
)

// Class é a classificação de risco de uma surebet aberta
type Class string

const (
	ClassSafe   Class = "SAFE"
	ClassLowROI Class = "LOW_ROI"
	ClassUnsafe Class = "UNSAFE"
)

// Assessment é a visão derivada de pior caso de uma surebet aberta.
// Nunca é estado autoritativo; pode ser cacheada e recalculada à vontade.
type Assessment struct {
	SurebetID        string          `json:"surebet_id"`
	ProfitIfAWinsEUR decimal.Decimal `json:"profit_if_a_wins_eur"`
	ProfitIfBWinsEUR decimal.Decimal `json:"profit_if_b_wins_eur"`
	WorstCaseEUR     decimal.Decimal `json:"worst_case_eur"`
	ROIPct           decimal.Decimal `json:"roi_pct"`
	Class            Class           `json:"class"`
	FXFallback       bool            `json:"fx_fallback,omitempty"`
}

// Store define as leituras que o classificador usa
type Store interface {
	GetSurebet(ctx context.Context, id string) (domain.Surebet, error)
	BetsBySurebet(ctx context.Context, surebetID string) ([]domain.Bet, error)
	ParticipantsBySurebet(ctx context.Context, surebetID string) ([]domain.Participant, error)
}

// RateSource resolve a taxa corrente de uma moeda (snapshot do dia)
type RateSource interface {
	Rate(ctx context.Context, currency string, date time.Time) (fx.Snapshot, error)
}

// Classifier computa worst-case-profit/ROI por surebet aberta.
// O threshold de ROI vem da configuração, nunca de constante.
type Classifier struct {
	log     *zap.Logger
	store   Store
	rates   RateSource
	rdb     *redis.Client // opcional; nil desliga o cache
	ttl     time.Duration
	roiSafe decimal.Decimal // ROI mínimo (%) para SAFE
}

// NewClassifier instancia o classificador de risco
func NewClassifier(log *zap.Logger, store Store, rates RateSource, rdb *redis.Client, ttl time.Duration, roiSafe decimal.Decimal) *Classifier {
	return &Classifier{log: log, store: store, rates: rates, rdb: rdb, ttl: ttl, roiSafe: roiSafe}
}

// Classify computa (ou devolve do cache) a avaliação de risco da surebet
func (c *Classifier) Classify(ctx context.Context, surebetID string) (Assessment, error) {
	key := "risk:" + surebetID
	if c.rdb != nil {
		if val, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var cached Assessment
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	sb, err := c.store.GetSurebet(ctx, surebetID)
	if err != nil {
		return Assessment{}, err
	}
	if sb.Status != domain.SurebetOpen {
		return Assessment{}, domain.NewValidationError("surebet %s is %s, risk applies to open surebets only", surebetID, sb.Status)
	}

	bets, err := c.store.BetsBySurebet(ctx, surebetID)
	if err != nil {
		return Assessment{}, err
	}
	parts, err := c.store.ParticipantsBySurebet(ctx, surebetID)
	if err != nil {
		return Assessment{}, err
	}
	sideOf := make(map[string]domain.Side, len(parts))
	for _, pt := range parts {
		sideOf[pt.BetID] = pt.Side()
	}

	a, err := c.assess(ctx, surebetID, bets, sideOf)
	if err != nil {
		return Assessment{}, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(a); err == nil {
			if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.log.Warn("risk cache set failed", zap.Error(err))
			}
		}
	}
	return a, nil
}

// assess faz a conta pura: converte tudo pra EUR com o snapshot corrente e
// deriva lucro por lado, pior caso, ROI e classe
func (c *Classifier) assess(ctx context.Context, surebetID string, bets []domain.Bet, sideOf map[string]domain.Side) (Assessment, error) {
	now := time.Now()
	totalStake := decimal.Zero
	payoutA := decimal.Zero
	payoutB := decimal.Zero
	fallback := false

	for _, b := range bets {
		snap, err := c.rates.Rate(ctx, b.Currency, now)
		if err != nil {
			return Assessment{}, err
		}
		fallback = fallback || snap.Fallback

		stakeEUR := b.Stake.Mul(snap.Rate).Round(2)
		payoutEUR := b.Payout.Mul(snap.Rate).Round(2)
		totalStake = totalStake.Add(stakeEUR)

		side, ok := sideOf[b.ID]
		if !ok {
			return Assessment{}, fmt.Errorf("bet %s has no participant row in surebet %s", b.ID, surebetID)
		}
		if side == domain.SideA {
			payoutA = payoutA.Add(payoutEUR)
		} else {
			payoutB = payoutB.Add(payoutEUR)
		}
	}

	profitA := payoutA.Sub(totalStake)
	profitB := payoutB.Sub(totalStake)
	worst := profitA
	if profitB.LessThan(worst) {
		worst = profitB
	}

	roi := decimal.Zero
	if totalStake.IsPositive() {
		roi = worst.Div(totalStake).Mul(decimal.NewFromInt(100)).Round(2)
	}

	class := ClassUnsafe
	switch {
	case worst.IsNegative():
		class = ClassUnsafe
	case roi.GreaterThanOrEqual(c.roiSafe):
		class = ClassSafe
	default:
		class = ClassLowROI
	}

	return Assessment{
		SurebetID:        surebetID,
		ProfitIfAWinsEUR: profitA,
		ProfitIfBWinsEUR: profitB,
		WorstCaseEUR:     worst,
		ROIPct:           roi,
		Class:            class,
		FXFallback:       fallback,
	}, nil
}
