package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// O commit só grava quando o plano cobre o conjunto atual de apostas da
// surebet: uma aposta vinculada entre o preview e o confirm invalida o
// plano, senão ela ficaria MATCHED presa numa surebet SETTLED
func TestEnsurePlanCoversBets(t *testing.T) {
	plan := &domain.SettlementPlan{
		SurebetID: "sb-1",
		Results: []domain.BetResult{
			{BetID: "bet-1"},
			{BetID: "bet-2"},
		},
	}

	require.NoError(t, ensurePlanCoversBets(plan, 2))

	var cErr *domain.StateConflictError
	err := ensurePlanCoversBets(plan, 3)
	require.ErrorAs(t, err, &cErr)
	assert.Contains(t, err.Error(), "preview again")

	err = ensurePlanCoversBets(plan, 1)
	require.ErrorAs(t, err, &cErr)
}
