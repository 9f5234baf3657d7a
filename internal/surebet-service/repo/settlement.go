package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// CommitSettlement grava o batch de settlement de forma atômica:
// recheca a surebet OPEN com lock, insere todas as linhas de ledger,
// transiciona cada aposta para SETTLED com seu outcome e fecha a surebet.
// Ou tudo entra, ou nada entra.
func (p *Postgres) CommitSettlement(ctx context.Context, plan *domain.SettlementPlan) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "begin settlement tx", Err: err}
	}
	defer tx.Rollback()

	// Precondição rechecada na hora do commit
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM surebets WHERE id=$1 FOR UPDATE`, plan.SurebetID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return &domain.PersistenceError{Op: "lock surebet", Err: err}
	}
	if domain.SurebetStatus(status) != domain.SurebetOpen {
		return domain.NewStateConflictError("surebet %s is %s, expected OPEN", plan.SurebetID, status)
	}

	// A surebet pode ter ganhado apostas entre o cálculo do plano e o
	// lock acima; settling só uma parte deixaria apostas MATCHED presas
	// numa surebet SETTLED
	var betCount int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bets WHERE surebet_id=$1`, plan.SurebetID).Scan(&betCount); err != nil {
		return &domain.PersistenceError{Op: "count surebet bets", Err: err}
	}
	if err := ensurePlanCoversBets(plan, betCount); err != nil {
		return err
	}

	for i := range plan.Entries {
		e := &plan.Entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := insertLedgerEntryTx(ctx, tx, e); err != nil {
			return &domain.PersistenceError{Op: "insert settlement ledger row", Err: err}
		}
	}

	for _, r := range plan.Results {
		res, err := tx.ExecContext(ctx, `
			UPDATE bets SET status='SETTLED', settlement_outcome=$1, updated_at=NOW()
			WHERE id=$2 AND status='MATCHED'`,
			string(r.Outcome), r.BetID)
		if err != nil {
			return &domain.PersistenceError{Op: "transition bet to settled", Err: err}
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return domain.NewStateConflictError("bet %s is no longer MATCHED", r.BetID)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE surebets SET status='SETTLED', updated_at=NOW() WHERE id=$1`,
		plan.SurebetID); err != nil {
		return &domain.PersistenceError{Op: "transition surebet to settled", Err: err}
	}

	if err = tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "commit settlement tx", Err: err}
	}
	return nil
}

// ensurePlanCoversBets exige que o plano cubra exatamente o conjunto
// atual de apostas da surebet
func ensurePlanCoversBets(plan *domain.SettlementPlan, current int) error {
	if len(plan.Results) != current {
		return domain.NewStateConflictError(
			"surebet %s has %d bets but the settlement plan covers %d, preview again before confirming",
			plan.SurebetID, current, len(plan.Results))
	}
	return nil
}

// execer cobre *sql.Tx e *sql.DB para o insert de linhas de ledger
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertLedgerEntryTx insere uma linha de ledger. INSERT é a única
// operação de escrita que existe para ledger_entries em todo o código.
func insertLedgerEntryTx(ctx context.Context, ex execer, e *domain.LedgerEntry) error {
	_, err := ex.ExecContext(ctx, `
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
	return err
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
