package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SurebetStatus: OPEN -> SETTLED (terminal), só via settlement engine
type SurebetStatus string

const (
	SurebetOpen    SurebetStatus = "OPEN"
	SurebetSettled SurebetStatus = "SETTLED"
)

// Surebet é uma posição de arbitragem aberta sobre a tupla única
// (event, market, period, line). No máximo uma surebet OPEN por tupla.
type Surebet struct {
	ID          string
	EventID     string
	MarketCode  string
	PeriodScope string
	LineValue   decimal.NullDecimal
	Status      SurebetStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Participant liga uma aposta a uma surebet. O lado é gravado na criação
// e não tem setter: imutável pelo resto da vida da linha.
type Participant struct {
	SurebetID string
	BetID     string
	side      Side
}

// NewParticipant constrói o vínculo com o lado fixado de uma vez
func NewParticipant(surebetID, betID string, side Side) Participant {
	return Participant{SurebetID: surebetID, BetID: betID, side: side}
}

// Side retorna o lado imutável do participante
func (p Participant) Side() Side { return p.side }
