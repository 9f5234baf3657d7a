package ledger

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// Postgres implementa Store sobre a tabela ledger_entries.
// As únicas statements que existem aqui são INSERT e SELECT.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna o ledger store em Postgres
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var _ Store = (*Postgres)(nil)

// Append grava um fato financeiro novo e devolve o id gerado
func (p *Postgres) Append(ctx context.Context, e domain.LedgerEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO ledger_entries
		  (id, entry_type, associate_id, bookmaker_id, surebet_id, bet_id,
		   settlement_batch_id, settlement_state,
		   amount_native, native_currency, fx_rate_snapshot, amount_eur,
		   principal_returned_eur, per_surebet_share_eur, created_by, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		e.ID, string(e.EntryType), e.AssociateID, nullStr(e.BookmakerID),
		nullStr(e.SurebetID), nullStr(e.BetID), nullStr(e.SettlementBatchID),
		nullStr(string(e.SettlementState)),
		e.AmountNative, e.NativeCurrency, e.FXRateSnapshot, e.AmountEUR,
		e.PrincipalReturnedEUR, e.PerSurebetShareEUR, e.CreatedBy, e.Note)
	if err != nil {
		return "", &domain.PersistenceError{Op: "append ledger entry", Err: err}
	}
	return e.ID, nil
}

// ByAssociate lista os lançamentos de um associado em ordem cronológica
func (p *Postgres) ByAssociate(ctx context.Context, associateID string) ([]domain.LedgerEntry, error) {
	return p.query(ctx, entrySelect+` WHERE associate_id=$1 ORDER BY created_at, id`, associateID)
}

// ByBookmaker lista os lançamentos de uma conta de bookmaker
func (p *Postgres) ByBookmaker(ctx context.Context, bookmakerID string) ([]domain.LedgerEntry, error) {
	return p.query(ctx, entrySelect+` WHERE bookmaker_id=$1 ORDER BY created_at, id`, bookmakerID)
}

// BySurebet lista os lançamentos de uma surebet (o batch do settlement)
func (p *Postgres) BySurebet(ctx context.Context, surebetID string) ([]domain.LedgerEntry, error) {
	return p.query(ctx, entrySelect+` WHERE surebet_id=$1 ORDER BY created_at, id`, surebetID)
}

// ByDateRange lista lançamentos por período, com filtros opcionais
func (p *Postgres) ByDateRange(ctx context.Context, f domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	q := entrySelect + ` WHERE created_at >= $1 AND created_at < $2`
	args := []any{f.From, f.To}
	if f.AssociateID != "" {
		args = append(args, f.AssociateID)
		q += ` AND associate_id=$3`
	}
	q += ` ORDER BY created_at, id`
	return p.query(ctx, q, args...)
}

// AggregateForAssociate calcula as somas de reconciliação de um associado
func (p *Postgres) AggregateForAssociate(ctx context.Context, associateID string) (domain.LedgerAggregate, error) {
	agg := domain.LedgerAggregate{AssociateID: associateID}
	err := p.db.QueryRowContext(ctx, aggregateSelect+` WHERE associate_id=$1`, associateID).
		Scan(&agg.NetDepositsEUR, &agg.ShouldHoldEUR, &agg.CurrentHoldingEUR)
	if err != nil {
		return domain.LedgerAggregate{}, &domain.PersistenceError{Op: "aggregate for associate", Err: err}
	}
	return agg, nil
}

// AggregatesByAssociate calcula as somas de reconciliação de todos os associados
func (p *Postgres) AggregatesByAssociate(ctx context.Context) ([]domain.LedgerAggregate, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT associate_id,`+aggregateSums+`
		FROM ledger_entries GROUP BY associate_id ORDER BY associate_id`)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "aggregates by associate", Err: err}
	}
	defer rows.Close()

	var out []domain.LedgerAggregate
	for rows.Next() {
		var agg domain.LedgerAggregate
		if err := rows.Scan(&agg.AssociateID, &agg.NetDepositsEUR, &agg.ShouldHoldEUR, &agg.CurrentHoldingEUR); err != nil {
			return nil, &domain.PersistenceError{Op: "scan aggregate", Err: err}
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

// AggregatesByBookmaker é o drilldown por conta de bookmaker de um associado,
// para comparação com o saldo reportado externamente
func (p *Postgres) AggregatesByBookmaker(ctx context.Context, associateID string) ([]domain.LedgerAggregate, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT associate_id, bookmaker_id,`+aggregateSums+`
		FROM ledger_entries
		WHERE associate_id=$1 AND bookmaker_id IS NOT NULL
		GROUP BY associate_id, bookmaker_id ORDER BY bookmaker_id`, associateID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "aggregates by bookmaker", Err: err}
	}
	defer rows.Close()

	var out []domain.LedgerAggregate
	for rows.Next() {
		var agg domain.LedgerAggregate
		if err := rows.Scan(&agg.AssociateID, &agg.BookmakerID, &agg.NetDepositsEUR, &agg.ShouldHoldEUR, &agg.CurrentHoldingEUR); err != nil {
			return nil, &domain.PersistenceError{Op: "scan bookmaker aggregate", Err: err}
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

const aggregateSums = `
	COALESCE(SUM(amount_eur) FILTER (WHERE entry_type IN ('DEPOSIT','WITHDRAWAL')), 0),
	COALESCE(SUM(COALESCE(principal_returned_eur,0) + COALESCE(per_surebet_share_eur,0))
	         FILTER (WHERE entry_type='BET_RESULT'), 0),
	COALESCE(SUM(amount_eur), 0)`

const aggregateSelect = `
	SELECT` + aggregateSums + `
	FROM ledger_entries`

const entrySelect = `
	SELECT id, entry_type, associate_id, bookmaker_id, surebet_id, bet_id,
	       settlement_batch_id, settlement_state,
	       amount_native, native_currency, fx_rate_snapshot, amount_eur,
	       principal_returned_eur, per_surebet_share_eur, created_at, created_by, note
	FROM ledger_entries`

func (p *Postgres) query(ctx context.Context, q string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "query ledger", Err: err}
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var entryType string
		var bookmakerID, surebetID, betID, batchID, state sql.NullString
		if err := rows.Scan(&e.ID, &entryType, &e.AssociateID, &bookmakerID, &surebetID, &betID,
			&batchID, &state,
			&e.AmountNative, &e.NativeCurrency, &e.FXRateSnapshot, &e.AmountEUR,
			&e.PrincipalReturnedEUR, &e.PerSurebetShareEUR, &e.CreatedAt, &e.CreatedBy, &e.Note); err != nil {
			return nil, &domain.PersistenceError{Op: "scan ledger entry", Err: err}
		}
		e.EntryType = domain.EntryType(entryType)
		e.BookmakerID = bookmakerID.String
		e.SurebetID = surebetID.String
		e.BetID = betID.String
		e.SettlementBatchID = batchID.String
		e.SettlementState = domain.Outcome(state.String)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
