package matching

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// Store define as operações de persistência que o matching usa
type Store interface {
	GetBet(ctx context.Context, id string) (domain.Bet, error)
	// LinkBet é a unidade atômica: create-or-fetch da surebet, insert do
	// participante e transição da aposta, em uma transação
	LinkBet(ctx context.Context, bet domain.Bet, side domain.Side) (surebetID string, created bool, err error)
}

// Result descreve o desfecho de um match: entrou numa surebet existente,
// criou uma nova, ou era no-op (aposta já vinculada)
type Result struct {
	SurebetID     string      `json:"surebet_id"`
	Side          domain.Side `json:"side"`
	Created       bool        `json:"created"`
	AlreadyLinked bool        `json:"already_linked"`
}

// Engine pareia apostas verificadas em surebets sob regras estritas de
// igualdade de tupla e lados opostos mapeados de forma fixa
type Engine struct {
	log   *zap.Logger
	store Store

	OnMatch func(created bool) // métricas
}

// NewEngine instancia o matching engine
func NewEngine(log *zap.Logger, store Store) *Engine {
	return &Engine{log: log, store: store}
}

// Match vincula uma aposta verificada a uma surebet aberta com a mesma
// tupla (event, market, period, line), criando a surebet se não existir.
// Apostas do mesmo lado entram na MESMA surebet (A1+A2 vs B1 é uma só).
func (e *Engine) Match(ctx context.Context, betID string) (Result, error) {
	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return Result{}, err
	}

	// Idempotência: aposta já vinculada devolve o vínculo existente,
	// sem duplicar a linha de participante
	if bet.SurebetID != "" {
		side, err := bet.Selection.MapSide()
		if err != nil {
			return Result{}, err
		}
		return Result{SurebetID: bet.SurebetID, Side: side, AlreadyLinked: true}, nil
	}

	if !bet.Supported {
		return Result{}, domain.NewValidationError("bet %s is not supported for matching (accumulator)", betID)
	}
	if bet.Status != domain.BetVerified {
		return Result{}, domain.NewValidationError("bet %s has status %s, only VERIFIED bets can be matched", betID, bet.Status)
	}

	side, err := bet.Selection.MapSide()
	if err != nil {
		return Result{}, err
	}

	surebetID, created, err := e.store.LinkBet(ctx, bet, side)
	if err != nil {
		return Result{}, err
	}

	e.log.Info("bet matched",
		zap.String("betId", betID),
		zap.String("surebetId", surebetID),
		zap.String("side", string(side)),
		zap.Bool("created", created),
	)
	if e.OnMatch != nil {
		e.OnMatch(created)
	}

	return Result{SurebetID: surebetID, Side: side, Created: created}, nil
}
