package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/dto"
)

// decodeAdjustment parseia o payload comum de depósito/retirada/correção
func (s *Server) decodeAdjustment(w http.ResponseWriter, r *http.Request) (dto.AdjustmentRequest, bool) {
	var req dto.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return req, false
	}
	if req.AssociateID == "" || req.Currency == "" {
		http.Error(w, "associate_id and currency required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// deposit registra dinheiro entrando numa conta de bookmaker
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAdjustment(w, r)
	if !ok {
		return
	}
	e, fallback, err := s.adjust.RecordDeposit(r.Context(), req.AssociateID, req.BookmakerID,
		req.Amount, req.Currency, req.Note, actorOrDefault(req.Actor))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.AdjustmentResponse{EntryID: e.ID, AmountEUR: e.AmountEUR, FXRate: e.FXRateSnapshot, FXFallback: fallback})
}

// withdrawal registra dinheiro saindo (gravado negativo no ledger)
func (s *Server) withdrawal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAdjustment(w, r)
	if !ok {
		return
	}
	e, fallback, err := s.adjust.RecordWithdrawal(r.Context(), req.AssociateID, req.BookmakerID,
		req.Amount, req.Currency, req.Note, actorOrDefault(req.Actor))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.AdjustmentResponse{EntryID: e.ID, AmountEUR: e.AmountEUR, FXRate: e.FXRateSnapshot, FXFallback: fallback})
}

// correction aplica o único conserto sancionado de um erro passado:
// uma linha nova, nunca uma edição
func (s *Server) correction(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAdjustment(w, r)
	if !ok {
		return
	}
	e, fallback, err := s.adjust.Apply(r.Context(), req.AssociateID, req.BookmakerID,
		req.Amount, req.Currency, req.Note, actorOrDefault(req.Actor))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.AdjustmentResponse{EntryID: e.ID, AmountEUR: e.AmountEUR, FXRate: e.FXRateSnapshot, FXFallback: fallback})
}

// queryLedger expõe as consultas read-only do ledger para relatórios.
// Consumidores de relatório nunca escrevem: não existe rota de escrita
// além dos appends acima.
func (s *Server) queryLedger(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var entries []domain.LedgerEntry
	var err error
	switch {
	case q.Get("surebetId") != "":
		entries, err = s.ledger.BySurebet(r.Context(), q.Get("surebetId"))
	case q.Get("bookmakerId") != "":
		entries, err = s.ledger.ByBookmaker(r.Context(), q.Get("bookmakerId"))
	case q.Get("from") != "" && q.Get("to") != "":
		f := domain.LedgerFilter{AssociateID: q.Get("associateId")}
		if f.From, err = time.Parse("2006-01-02", q.Get("from")); err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if f.To, err = time.Parse("2006-01-02", q.Get("to")); err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		// A query usa created_at < To; empurra o limite um dia pra
		// frente pra incluir o dia "to" inteiro
		f.To = f.To.AddDate(0, 0, 1)
		entries, err = s.ledger.ByDateRange(r.Context(), f)
	case q.Get("associateId") != "":
		entries, err = s.ledger.ByAssociate(r.Context(), q.Get("associateId"))
	default:
		http.Error(w, "associateId, bookmakerId, surebetId or from/to required", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromLedgerEntry(e))
	}
	writeJSON(w, out)
}

// reconOverview mostra quem está retendo a mais e quem está devendo
func (s *Server) reconOverview(w http.ResponseWriter, r *http.Request) {
	health, err := s.recon.Overview(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, health)
}

// reconAssociate mostra a saúde de um associado e o drilldown por bookmaker
func (s *Server) reconAssociate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h, err := s.recon.ForAssociate(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	drill, err := s.recon.BookmakerDrilldown(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"associate": h, "bookmakers": drill})
}

// exitSettlement zera o delta do associado com uma única CORRECTION
func (s *Server) exitSettlement(w http.ResponseWriter, r *http.Request) {
	var req dto.ExitRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	receipt, err := s.recon.ExitSettle(r.Context(), r.PathValue("id"), actorOrDefault(req.Actor))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, receipt)
}

// upsertFXRate carrega (idempotente) a taxa diária de uma moeda
func (s *Server) upsertFXRate(w http.ResponseWriter, r *http.Request) {
	var req dto.FXRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Currency == "" || !req.Rate.IsPositive() {
		http.Error(w, "currency and positive rate required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if err := s.fx.Upsert(r.Context(), req.Currency, date, req.Rate); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

// createAssociate cadastra um parceiro
func (s *Server) createAssociate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.HomeCurrency == "" {
		http.Error(w, "name and home_currency required", http.StatusBadRequest)
		return
	}
	id, err := s.repo.InsertAssociate(r.Context(), &domain.Associate{
		Name: req.Name, HomeCurrency: req.HomeCurrency, IsAdmin: req.IsAdmin,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"associateId": id})
}

// listAssociates lista os parceiros cadastrados
func (s *Server) listAssociates(w http.ResponseWriter, r *http.Request) {
	out, err := s.repo.ListAssociates(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, out)
}

// listBookmakers lista as contas de bookmaker de um associado
func (s *Server) listBookmakers(w http.ResponseWriter, r *http.Request) {
	out, err := s.repo.ListBookmakers(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, out)
}

// createBookmaker cadastra uma conta de bookmaker de um associado
func (s *Server) createBookmaker(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookmakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AssociateID == "" || req.Name == "" || req.Currency == "" {
		http.Error(w, "associate_id, name and currency required", http.StatusBadRequest)
		return
	}
	if _, err := s.repo.GetAssociate(r.Context(), req.AssociateID); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.repo.InsertBookmaker(r.Context(), &domain.Bookmaker{
		AssociateID: req.AssociateID, Name: req.Name, Currency: req.Currency,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"bookmakerId": id})
}
