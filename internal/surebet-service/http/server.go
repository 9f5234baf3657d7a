package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/ledger"
	"github.com/radieske/surebet-ledger/internal/surebet-service/matching"
	"github.com/radieske/surebet-ledger/internal/surebet-service/reconciliation"
	"github.com/radieske/surebet-ledger/internal/surebet-service/repo"
	"github.com/radieske/surebet-ledger/internal/surebet-service/risk"
	"github.com/radieske/surebet-ledger/internal/surebet-service/settlement"
	"github.com/radieske/surebet-ledger/pkg/contracts/events"
)

// Repo define a persistência core usada pelos handlers
type Repo interface {
	InsertBet(ctx context.Context, b *domain.Bet) (string, error)
	GetBet(ctx context.Context, id string) (domain.Bet, error)
	GetSurebet(ctx context.Context, id string) (domain.Surebet, error)
	BetsBySurebet(ctx context.Context, surebetID string) ([]domain.Bet, error)
	ParticipantsBySurebet(ctx context.Context, surebetID string) ([]domain.Participant, error)

	InsertAssociate(ctx context.Context, a *domain.Associate) (string, error)
	GetAssociate(ctx context.Context, id string) (domain.Associate, error)
	ListAssociates(ctx context.Context) ([]domain.Associate, error)
	InsertBookmaker(ctx context.Context, b *domain.Bookmaker) (string, error)
	ListBookmakers(ctx context.Context, associateID string) ([]domain.Bookmaker, error)
}

// Matcher é o matching engine visto pelos handlers
type Matcher interface {
	Match(ctx context.Context, betID string) (matching.Result, error)
}

// Classifier é o risk classifier visto pelos handlers
type Classifier interface {
	Classify(ctx context.Context, surebetID string) (risk.Assessment, error)
}

// Settler é o settlement engine visto pelos handlers
type Settler interface {
	Preview(ctx context.Context, surebetID string, outcomes map[string]domain.Outcome) (*domain.SettlementPlan, error)
	Confirm(ctx context.Context, surebetID string, outcomes map[string]domain.Outcome) (settlement.Receipt, error)
}

// Adjuster cobre depósitos, retiradas e correções forward-only
type Adjuster interface {
	Apply(ctx context.Context, associateID, bookmakerID string, amount decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error)
	RecordDeposit(ctx context.Context, associateID, bookmakerID string, amount decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error)
	RecordWithdrawal(ctx context.Context, associateID, bookmakerID string, amount decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error)
}

// Reconciler é o engine de reconciliação visto pelos handlers
type Reconciler interface {
	Overview(ctx context.Context) ([]reconciliation.Health, error)
	ForAssociate(ctx context.Context, associateID string) (reconciliation.Health, error)
	BookmakerDrilldown(ctx context.Context, associateID string) ([]reconciliation.Health, error)
	ExitSettle(ctx context.Context, associateID, actor string) (reconciliation.ExitReceipt, error)
}

// FXRates é a carga diária de taxas feita pelo operador
type FXRates interface {
	Upsert(ctx context.Context, currency string, date time.Time, rate decimal.Decimal) error
}

// Notifier publica pedidos manuais de notificação
type Notifier interface {
	PublishSurebetNotify(ctx context.Context, e events.SurebetNotify) error
}

// Server expõe a API HTTP do operador
type Server struct {
	log    *zap.Logger
	repo   Repo
	ledger ledger.Store
	match  Matcher
	risk   Classifier
	settle Settler
	adjust Adjuster
	recon  Reconciler
	fx     FXRates
	notify Notifier
}

// NewServer instancia o servidor HTTP do surebet-service
func NewServer(log *zap.Logger, r Repo, l ledger.Store, m Matcher, rk Classifier, s Settler, a Adjuster, rec Reconciler, fxr FXRates, n Notifier) *Server {
	return &Server{log: log, repo: r, ledger: l, match: m, risk: rk, settle: s, adjust: a, recon: rec, fx: fxr, notify: n}
}

// Router retorna o mux HTTP com as rotas da API do operador
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /bets", s.ingestBet)
	mux.HandleFunc("GET /bets/{id}", s.getBet)
	mux.HandleFunc("POST /bets/{id}/match", s.matchBet)

	mux.HandleFunc("GET /surebets/{id}", s.getSurebet)
	mux.HandleFunc("GET /surebets/{id}/risk", s.getRisk)
	mux.HandleFunc("POST /surebets/{id}/settlement/preview", s.previewSettlement)
	mux.HandleFunc("POST /surebets/{id}/settlement/confirm", s.confirmSettlement)
	mux.HandleFunc("POST /surebets/{id}/notify", s.notifySurebet)

	mux.HandleFunc("POST /ledger/deposits", s.deposit)
	mux.HandleFunc("POST /ledger/withdrawals", s.withdrawal)
	mux.HandleFunc("POST /corrections", s.correction)
	mux.HandleFunc("GET /ledger", s.queryLedger)

	mux.HandleFunc("GET /reconciliation", s.reconOverview)
	mux.HandleFunc("GET /reconciliation/{id}", s.reconAssociate)
	mux.HandleFunc("POST /reconciliation/{id}/exit", s.exitSettlement)

	mux.HandleFunc("POST /fx/rates", s.upsertFXRate)

	mux.HandleFunc("POST /associates", s.createAssociate)
	mux.HandleFunc("GET /associates", s.listAssociates)
	mux.HandleFunc("GET /associates/{id}/bookmakers", s.listBookmakers)
	mux.HandleFunc("POST /bookmakers", s.createBookmaker)

	return mux
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia a taxonomia de erros do core para status HTTP,
// sempre com o motivo no corpo — nenhum erro é engolido
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	var cErr *domain.StateConflictError
	var fxErr *domain.FXUnavailableError

	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &cErr):
		http.Error(w, cErr.Error(), http.StatusConflict)
	case errors.As(err, &fxErr):
		http.Error(w, fxErr.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("internal error", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
