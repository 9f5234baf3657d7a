package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// Postgres implementa a persistência de apostas, surebets e participantes
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório core
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var ErrNotFound = errors.New("not found")

// InsertBet insere uma aposta já verificada pela ingestão (status VERIFIED)
func (p *Postgres) InsertBet(ctx context.Context, b *domain.Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets
		  (id, associate_id, bookmaker_id, event_id, market_code, period_scope,
		   line_value, selection, stake, odds, payout, currency, supported, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'VERIFIED')`,
		id, b.AssociateID, b.BookmakerID, b.EventID, b.MarketCode, b.PeriodScope,
		b.LineValue, string(b.Selection), b.Stake, b.Odds, b.Payout, b.Currency, b.Supported,
	)
	if err != nil {
		return "", &domain.PersistenceError{Op: "insert bet", Err: err}
	}
	return id, nil
}

// GetBet busca uma aposta pelo id
func (p *Postgres) GetBet(ctx context.Context, id string) (domain.Bet, error) {
	return scanBet(p.db.QueryRowContext(ctx, betSelect+` WHERE id=$1`, id))
}

// BetsBySurebet lista as apostas vinculadas a uma surebet, em ordem de id
// (a ordem importa: o share do assento cai na primeira aposta do associado)
func (p *Postgres) BetsBySurebet(ctx context.Context, surebetID string) ([]domain.Bet, error) {
	rows, err := p.db.QueryContext(ctx, betSelect+` WHERE surebet_id=$1 ORDER BY id`, surebetID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "bets by surebet", Err: err}
	}
	defer rows.Close()

	var out []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetSurebet busca uma surebet pelo id
func (p *Postgres) GetSurebet(ctx context.Context, id string) (domain.Surebet, error) {
	var s domain.Surebet
	var status string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, event_id, market_code, period_scope, line_value, status, created_at, updated_at
		FROM surebets WHERE id=$1`, id).
		Scan(&s.ID, &s.EventID, &s.MarketCode, &s.PeriodScope, &s.LineValue, &status, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Surebet{}, ErrNotFound
	}
	if err != nil {
		return domain.Surebet{}, &domain.PersistenceError{Op: "get surebet", Err: err}
	}
	s.Status = domain.SurebetStatus(status)
	return s, nil
}

// ParticipantsBySurebet lista os vínculos aposta<->surebet com o lado imutável
func (p *Postgres) ParticipantsBySurebet(ctx context.Context, surebetID string) ([]domain.Participant, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT surebet_id, bet_id, side FROM surebet_participants WHERE surebet_id=$1 ORDER BY bet_id`,
		surebetID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "participants by surebet", Err: err}
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var sid, bid, side string
		if err := rows.Scan(&sid, &bid, &side); err != nil {
			return nil, &domain.PersistenceError{Op: "scan participant", Err: err}
		}
		out = append(out, domain.NewParticipant(sid, bid, domain.Side(side)))
	}
	return out, rows.Err()
}

const betSelect = `
	SELECT id, associate_id, bookmaker_id, event_id, market_code, period_scope,
	       line_value, selection, stake, odds, payout, currency, supported,
	       status, settlement_outcome, surebet_id, created_at, updated_at
	FROM bets`

type rowScanner interface{ Scan(dest ...any) error }

func scanBet(r rowScanner) (domain.Bet, error) {
	var b domain.Bet
	var selection, status string
	var outcome, surebetID sql.NullString
	var createdAt, updatedAt time.Time
	err := r.Scan(&b.ID, &b.AssociateID, &b.BookmakerID, &b.EventID, &b.MarketCode, &b.PeriodScope,
		&b.LineValue, &selection, &b.Stake, &b.Odds, &b.Payout, &b.Currency, &b.Supported,
		&status, &outcome, &surebetID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Bet{}, ErrNotFound
	}
	if err != nil {
		return domain.Bet{}, &domain.PersistenceError{Op: "scan bet", Err: err}
	}
	b.Selection = domain.Selection(selection)
	b.Status = domain.BetStatus(status)
	b.Outcome = domain.Outcome(outcome.String)
	b.SurebetID = surebetID.String
	b.CreatedAt, b.UpdatedAt = createdAt, updatedAt
	return b, nil
}
