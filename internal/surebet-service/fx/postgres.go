package fx

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Postgres implementa RateRepo sobre a tabela fx_rates
type Postgres struct{ db *sql.DB }

// NewPostgres retorna o repositório de taxas de câmbio
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// RateOn busca a taxa exata para (currency, date)
func (p *Postgres) RateOn(ctx context.Context, currency string, date time.Time) (decimal.Decimal, bool, error) {
	var rate decimal.Decimal
	err := p.db.QueryRowContext(ctx,
		`SELECT rate FROM fx_rates WHERE currency=$1 AND rate_date=$2`,
		currency, date).Scan(&rate)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return rate, true, nil
}

// LastKnownBefore busca a taxa mais recente com rate_date <= date
func (p *Postgres) LastKnownBefore(ctx context.Context, currency string, date time.Time) (decimal.Decimal, time.Time, bool, error) {
	var rate decimal.Decimal
	var from time.Time
	err := p.db.QueryRowContext(ctx, `
		SELECT rate, rate_date FROM fx_rates
		WHERE currency=$1 AND rate_date<=$2
		ORDER BY rate_date DESC LIMIT 1`,
		currency, date).Scan(&rate, &from)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, time.Time{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, time.Time{}, false, err
	}
	return rate, from, true, nil
}

// Upsert insere ou atualiza a taxa diária de uma moeda.
// ON CONFLICT garante idempotência da carga diária do operador.
func (p *Postgres) Upsert(ctx context.Context, currency string, date time.Time, rate decimal.Decimal) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO fx_rates (currency, rate_date, rate)
		VALUES ($1,$2,$3)
		ON CONFLICT (currency, rate_date) DO UPDATE SET rate = EXCLUDED.rate`,
		currency, date, rate)
	return err
}
