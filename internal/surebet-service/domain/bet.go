package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus é o ciclo de vida de uma aposta. Transições só andam pra frente:
// VERIFIED -> MATCHED -> SETTLED (terminal).
type BetStatus string

const (
	BetVerified BetStatus = "VERIFIED"
	BetMatched  BetStatus = "MATCHED"
	BetSettled  BetStatus = "SETTLED"
)

// CanTransitionTo valida a transição de status (somente forward)
func (s BetStatus) CanTransitionTo(next BetStatus) bool {
	switch s {
	case BetVerified:
		return next == BetMatched
	case BetMatched:
		return next == BetSettled
	default:
		return false
	}
}

// Side é o lado determinístico de uma surebet. Uma vez gravado no
// participante, nunca muda — a matemática do settlement depende disso.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Selection é a seleção original da aposta, como veio da ingestão
type Selection string

const (
	SelectionOver  Selection = "OVER"
	SelectionUnder Selection = "UNDER"
	SelectionYes   Selection = "YES"
	SelectionNo    Selection = "NO"
	SelectionTeamA Selection = "TEAM_A"
	SelectionTeamB Selection = "TEAM_B"
)

// MapSide aplica o mapeamento fixo de seleção para lado:
// OVER/YES/TEAM_A => A; UNDER/NO/TEAM_B => B. Não é configurável.
func (sel Selection) MapSide() (Side, error) {
	switch sel {
	case SelectionOver, SelectionYes, SelectionTeamA:
		return SideA, nil
	case SelectionUnder, SelectionNo, SelectionTeamB:
		return SideB, nil
	default:
		return "", NewValidationError("unknown selection %q", string(sel))
	}
}

// Outcome é o resultado de uma aposta, decidido pelo operador no settlement
type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
	OutcomeVoid Outcome = "VOID"
)

// Valid informa se o outcome é um dos três valores aceitos
func (o Outcome) Valid() bool {
	return o == OutcomeWon || o == OutcomeLost || o == OutcomeVoid
}

// Bet é uma posição apostada e verificada, entregue pela ingestão.
// Valores monetários são sempre decimais exatos.
type Bet struct {
	ID          string
	AssociateID string
	BookmakerID string

	EventID     string
	MarketCode  string
	PeriodScope string
	LineValue   decimal.NullDecimal // null para mercados sem linha

	Selection Selection
	Stake     decimal.Decimal
	Odds      decimal.Decimal
	Payout    decimal.Decimal
	Currency  string

	Supported bool // false para acumuladas, que não entram no matching
	Status    BetStatus
	Outcome   Outcome // vazio até o settlement
	SurebetID string  // vazio até o matching

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameLine compara line_value tratando dois nulls como iguais
func SameLine(a, b decimal.NullDecimal) bool {
	if !a.Valid && !b.Valid {
		return true
	}
	if a.Valid != b.Valid {
		return false
	}
	return a.Decimal.Equal(b.Decimal)
}
