package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// InsertAssociate cadastra um associado (parceiro de confiança)
func (p *Postgres) InsertAssociate(ctx context.Context, a *domain.Associate) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO associates (id, name, home_currency, is_admin) VALUES ($1,$2,$3,$4)`,
		id, a.Name, a.HomeCurrency, a.IsAdmin)
	if err != nil {
		return "", &domain.PersistenceError{Op: "insert associate", Err: err}
	}
	return id, nil
}

// GetAssociate busca um associado pelo id
func (p *Postgres) GetAssociate(ctx context.Context, id string) (domain.Associate, error) {
	var a domain.Associate
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, home_currency, is_admin, created_at FROM associates WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.HomeCurrency, &a.IsAdmin, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Associate{}, ErrNotFound
	}
	if err != nil {
		return domain.Associate{}, &domain.PersistenceError{Op: "get associate", Err: err}
	}
	return a, nil
}

// ListAssociates lista todos os associados cadastrados
func (p *Postgres) ListAssociates(ctx context.Context) ([]domain.Associate, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, home_currency, is_admin, created_at FROM associates ORDER BY name`)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list associates", Err: err}
	}
	defer rows.Close()

	var out []domain.Associate
	for rows.Next() {
		var a domain.Associate
		if err := rows.Scan(&a.ID, &a.Name, &a.HomeCurrency, &a.IsAdmin, &a.CreatedAt); err != nil {
			return nil, &domain.PersistenceError{Op: "scan associate", Err: err}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdminAssociate resolve o associado admin/coordenador pela flag is_admin
func (p *Postgres) AdminAssociate(ctx context.Context) (domain.Associate, error) {
	var a domain.Associate
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, home_currency, is_admin, created_at FROM associates WHERE is_admin LIMIT 1`).
		Scan(&a.ID, &a.Name, &a.HomeCurrency, &a.IsAdmin, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Associate{}, ErrNotFound
	}
	if err != nil {
		return domain.Associate{}, &domain.PersistenceError{Op: "admin associate", Err: err}
	}
	return a, nil
}

// InsertBookmaker cadastra uma conta de bookmaker de um associado
func (p *Postgres) InsertBookmaker(ctx context.Context, b *domain.Bookmaker) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO bookmakers (id, associate_id, name, currency) VALUES ($1,$2,$3,$4)`,
		id, b.AssociateID, b.Name, b.Currency)
	if err != nil {
		return "", &domain.PersistenceError{Op: "insert bookmaker", Err: err}
	}
	return id, nil
}

// GetBookmaker busca uma conta de bookmaker pelo id
func (p *Postgres) GetBookmaker(ctx context.Context, id string) (domain.Bookmaker, error) {
	var b domain.Bookmaker
	err := p.db.QueryRowContext(ctx,
		`SELECT id, associate_id, name, currency, created_at FROM bookmakers WHERE id=$1`, id).
		Scan(&b.ID, &b.AssociateID, &b.Name, &b.Currency, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Bookmaker{}, ErrNotFound
	}
	if err != nil {
		return domain.Bookmaker{}, &domain.PersistenceError{Op: "get bookmaker", Err: err}
	}
	return b, nil
}

// ListBookmakers lista as contas de bookmaker de um associado
func (p *Postgres) ListBookmakers(ctx context.Context, associateID string) ([]domain.Bookmaker, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, associate_id, name, currency, created_at FROM bookmakers WHERE associate_id=$1 ORDER BY name`,
		associateID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list bookmakers", Err: err}
	}
	defer rows.Close()

	var out []domain.Bookmaker
	for rows.Next() {
		var b domain.Bookmaker
		if err := rows.Scan(&b.ID, &b.AssociateID, &b.Name, &b.Currency, &b.CreatedAt); err != nil {
			return nil, &domain.PersistenceError{Op: "scan bookmaker", Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
