package ledger

import (
	"context"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// Store é a superfície pública mínima do ledger: append e leituras.
// Não existe update nem delete — a imutabilidade é estrutural, imposta
// pela forma da API, não por guarda de runtime.
type Store interface {
	Append(ctx context.Context, e domain.LedgerEntry) (string, error)

	ByAssociate(ctx context.Context, associateID string) ([]domain.LedgerEntry, error)
	ByBookmaker(ctx context.Context, bookmakerID string) ([]domain.LedgerEntry, error)
	BySurebet(ctx context.Context, surebetID string) ([]domain.LedgerEntry, error)
	ByDateRange(ctx context.Context, f domain.LedgerFilter) ([]domain.LedgerEntry, error)

	AggregateForAssociate(ctx context.Context, associateID string) (domain.LedgerAggregate, error)
	AggregatesByAssociate(ctx context.Context) ([]domain.LedgerAggregate, error)
	AggregatesByBookmaker(ctx context.Context, associateID string) ([]domain.LedgerAggregate, error)
}
