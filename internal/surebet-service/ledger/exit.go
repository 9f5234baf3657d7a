package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// ExitSettle zera o delta de um associado com exatamente uma linha de
// CORRECTION de valor -delta. O cálculo do delta e o append acontecem na
// mesma transação serializable: não há leitura stale entre computar e gravar.
func (p *Postgres) ExitSettle(ctx context.Context, associateID, createdBy string) (domain.LedgerEntry, decimal.Decimal, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return domain.LedgerEntry{}, decimal.Decimal{}, &domain.PersistenceError{Op: "begin exit tx", Err: err}
	}
	defer tx.Rollback()

	agg := domain.LedgerAggregate{AssociateID: associateID}
	err = tx.QueryRowContext(ctx, aggregateSelect+` WHERE associate_id=$1`, associateID).
		Scan(&agg.NetDepositsEUR, &agg.ShouldHoldEUR, &agg.CurrentHoldingEUR)
	if err != nil {
		return domain.LedgerEntry{}, decimal.Decimal{}, &domain.PersistenceError{Op: "exit aggregate", Err: err}
	}

	delta := agg.DeltaEUR()
	cent := decimal.New(1, -2)
	if delta.Abs().LessThan(cent) {
		return domain.LedgerEntry{}, delta, domain.NewValidationError(
			"associate %s is already balanced (delta %s EUR), nothing to settle", associateID, delta.StringFixed(2))
	}

	// delta > 0: sobre-retenção, o associado devolve (retirada);
	// delta < 0: falta, o associado recebe (depósito). O ajuste é -delta.
	direction := "deposit"
	if delta.IsPositive() {
		direction = "withdrawal"
	}
	note := fmt.Sprintf("exit settlement: %s of %s EUR, delta was %s EUR",
		direction, delta.Abs().StringFixed(2), delta.StringFixed(2))

	e := domain.LedgerEntry{
		ID:             uuid.NewString(),
		EntryType:      domain.EntryCorrection,
		AssociateID:    associateID,
		AmountNative:   delta.Neg(),
		NativeCurrency: "EUR",
		FXRateSnapshot: decimal.NewFromInt(1),
		AmountEUR:      delta.Neg(),
		CreatedBy:      createdBy,
		Note:           note,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries
		  (id, entry_type, associate_id,
		   amount_native, native_currency, fx_rate_snapshot, amount_eur,
		   created_by, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, string(e.EntryType), e.AssociateID,
		e.AmountNative, e.NativeCurrency, e.FXRateSnapshot, e.AmountEUR,
		e.CreatedBy, e.Note); err != nil {
		return domain.LedgerEntry{}, delta, &domain.PersistenceError{Op: "insert exit correction", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.LedgerEntry{}, delta, &domain.PersistenceError{Op: "commit exit tx", Err: err}
	}
	return e, delta, nil
}
