package events

import "time"

// Evento publicado no tópico "surebet_notify" quando o operador decide
// avisar os associados do lado oposto de uma surebet. Nunca é emitido
// automaticamente pelo settlement.
type SurebetNotify struct {
	SurebetID      string    `json:"surebet_id"`
	Side           string    `json:"side"` // "A" | "B": lado que deve ser avisado
	ScreenshotRefs []string  `json:"screenshot_refs,omitempty"`
	RequestedBy    string    `json:"requested_by"`
	Ts             time.Time `json:"ts"`
}
