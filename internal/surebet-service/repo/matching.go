package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// LinkBet executa a unidade atômica do matching: create-or-fetch da surebet
// aberta com a mesma tupla (event, market, period, line), insert do
// participante com o lado mapeado e transição da aposta para MATCHED.
// Tudo em uma transação; se a precondição falhar no commit, nada é aplicado.
func (p *Postgres) LinkBet(ctx context.Context, bet domain.Bet, side domain.Side) (surebetID string, created bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, &domain.PersistenceError{Op: "begin matching tx", Err: err}
	}
	defer tx.Rollback()

	// Recheca a precondição dentro da transação, com lock na linha da aposta
	var status string
	var linked sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT status, surebet_id FROM bets WHERE id=$1 FOR UPDATE`, bet.ID).
		Scan(&status, &linked)
	if err == sql.ErrNoRows {
		return "", false, ErrNotFound
	}
	if err != nil {
		return "", false, &domain.PersistenceError{Op: "lock bet", Err: err}
	}

	// Idempotência: aposta já vinculada é no-op, devolve o vínculo existente
	if linked.Valid {
		return linked.String, false, nil
	}
	if domain.BetStatus(status) != domain.BetVerified {
		return "", false, domain.NewStateConflictError("bet %s is %s, expected VERIFIED", bet.ID, status)
	}

	// Candidata: surebet aberta com tupla idêntica (null == null na linha)
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM surebets
		WHERE status='OPEN'
		  AND event_id=$1 AND market_code=$2 AND period_scope=$3
		  AND line_value IS NOT DISTINCT FROM $4
		FOR UPDATE`,
		bet.EventID, bet.MarketCode, bet.PeriodScope, bet.LineValue).
		Scan(&surebetID)
	if err == sql.ErrNoRows {
		surebetID = uuid.NewString()
		created = true
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO surebets (id, event_id, market_code, period_scope, line_value, status)
			VALUES ($1,$2,$3,$4,$5,'OPEN')`,
			surebetID, bet.EventID, bet.MarketCode, bet.PeriodScope, bet.LineValue); err != nil {
			return "", false, &domain.PersistenceError{Op: "create surebet", Err: err}
		}
	} else if err != nil {
		return "", false, &domain.PersistenceError{Op: "find open surebet", Err: err}
	}

	// O lado é gravado uma única vez; não existe UPDATE para essa coluna
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO surebet_participants (surebet_id, bet_id, side) VALUES ($1,$2,$3)`,
		surebetID, bet.ID, string(side)); err != nil {
		return "", false, &domain.PersistenceError{Op: "insert participant", Err: err}
	}

	// Transição só depois do participante estar durável na mesma transação
	if _, err = tx.ExecContext(ctx,
		`UPDATE bets SET status='MATCHED', surebet_id=$1, updated_at=NOW() WHERE id=$2`,
		surebetID, bet.ID); err != nil {
		return "", false, &domain.PersistenceError{Op: "transition bet to matched", Err: err}
	}

	if err = tx.Commit(); err != nil {
		return "", false, &domain.PersistenceError{Op: "commit matching tx", Err: err}
	}
	return surebetID, created, nil
}
