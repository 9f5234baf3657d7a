package domain

import "fmt"

// Taxonomia de erros do core. Todos sobem até o caller com detalhe
// suficiente pra explicar o porquê; nenhum é engolido em silêncio.

// ValidationError: input ruim, rejeitado antes de qualquer escrita
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError cria um ValidationError formatado
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError: precondição violada na hora do commit
// (surebet já settled, aposta já matched). A operação aborta sem efeito parcial.
type StateConflictError struct{ Msg string }

func (e *StateConflictError) Error() string { return e.Msg }

// NewStateConflictError cria um StateConflictError formatado
func NewStateConflictError(format string, args ...any) *StateConflictError {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

// FXUnavailableError: nenhuma taxa jamais existiu para a moeda.
// O fallback de última taxa conhecida NÃO gera esse erro, só um warning.
type FXUnavailableError struct{ Currency string }

func (e *FXUnavailableError) Error() string {
	return fmt.Sprintf("no fx rate has ever existed for currency %s", e.Currency)
}

// PersistenceError: falha de storage no meio de um batch. O batch inteiro
// sofre rollback e o caller deve tentar de novo; zero linhas gravadas.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
