package domain

import "time"

// Associate é um parceiro de confiança que detém contas em bookmakers.
// Exatamente um associado carrega a flag de admin/coordenador.
type Associate struct {
	ID           string
	Name         string
	HomeCurrency string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Bookmaker é uma conta de apostas pertencente a um associado
type Bookmaker struct {
	ID          string
	AssociateID string
	Name        string
	Currency    string
	CreatedAt   time.Time
}
