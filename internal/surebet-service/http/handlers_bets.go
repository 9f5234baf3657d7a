package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/dto"
	"github.com/radieske/surebet-ledger/pkg/contracts/events"
)

// ingestBet recebe uma aposta já verificada pela revisão humana (ingestão)
func (s *Server) ingestBet(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AssociateID == "" || req.BookmakerID == "" || req.EventID == "" ||
		req.MarketCode == "" || req.Currency == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if !req.Stake.IsPositive() || !req.Odds.GreaterThan(decimal.NewFromInt(1)) || !req.Payout.IsPositive() {
		http.Error(w, "stake/odds/payout must be positive (odds > 1)", http.StatusBadRequest)
		return
	}
	sel := domain.Selection(req.Selection)
	if _, err := sel.MapSide(); err != nil {
		s.writeError(w, err)
		return
	}

	supported := true
	if req.Supported != nil {
		supported = *req.Supported
	}
	line := decimal.NullDecimal{}
	if req.LineValue != nil {
		line = decimal.NewNullDecimal(*req.LineValue)
	}

	id, err := s.repo.InsertBet(r.Context(), &domain.Bet{
		AssociateID: req.AssociateID,
		BookmakerID: req.BookmakerID,
		EventID:     req.EventID,
		MarketCode:  req.MarketCode,
		PeriodScope: req.PeriodScope,
		LineValue:   line,
		Selection:   sel,
		Stake:       req.Stake,
		Odds:        req.Odds,
		Payout:      req.Payout,
		Currency:    req.Currency,
		Supported:   supported,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, dto.IngestBetResponse{BetID: id, Status: string(domain.BetVerified)})
}

// getBet retorna uma aposta pelo id
func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.GetBet(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, betResponse(b))
}

// matchBet executa o matching de uma aposta verificada
func (s *Server) matchBet(w http.ResponseWriter, r *http.Request) {
	res, err := s.match.Match(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// getSurebet retorna a surebet com suas apostas participantes
func (s *Server) getSurebet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sb, err := s.repo.GetSurebet(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bets, err := s.repo.BetsBySurebet(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	parts, err := s.repo.ParticipantsBySurebet(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sideOf := make(map[string]domain.Side, len(parts))
	for _, pt := range parts {
		sideOf[pt.BetID] = pt.Side()
	}

	resp := dto.SurebetResponse{
		ID:          sb.ID,
		EventID:     sb.EventID,
		MarketCode:  sb.MarketCode,
		PeriodScope: sb.PeriodScope,
		Status:      string(sb.Status),
	}
	if sb.LineValue.Valid {
		v := sb.LineValue.Decimal
		resp.LineValue = &v
	}
	for _, b := range bets {
		resp.Bets = append(resp.Bets, dto.SurebetBetRow{
			BetID:       b.ID,
			AssociateID: b.AssociateID,
			Side:        string(sideOf[b.ID]),
			Stake:       b.Stake,
			Odds:        b.Odds,
			Currency:    b.Currency,
			Status:      string(b.Status),
		})
	}
	writeJSON(w, resp)
}

// getRisk retorna a classificação de risco derivada da surebet aberta
func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	a, err := s.risk.Classify(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, a)
}

// previewSettlement monta o plano de distribuição sem gravar nada
func (s *Server) previewSettlement(w http.ResponseWriter, r *http.Request) {
	outcomes, ok := s.decodeOutcomes(w, r)
	if !ok {
		return
	}
	plan, err := s.settle.Preview(r.Context(), r.PathValue("id"), outcomes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, previewResponse(plan))
}

// confirmSettlement grava o batch de settlement de forma atômica e irreversível
func (s *Server) confirmSettlement(w http.ResponseWriter, r *http.Request) {
	outcomes, ok := s.decodeOutcomes(w, r)
	if !ok {
		return
	}
	receipt, err := s.settle.Confirm(r.Context(), r.PathValue("id"), outcomes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, receipt)
}

// notifySurebet publica o pedido manual de notificação do lado oposto.
// Só o operador chega aqui; o settlement nunca dispara mensagem sozinho.
func (s *Server) notifySurebet(w http.ResponseWriter, r *http.Request) {
	var req dto.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Side != string(domain.SideA) && req.Side != string(domain.SideB) {
		http.Error(w, "side must be A or B", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	if _, err := s.repo.GetSurebet(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.notify.PublishSurebetNotify(r.Context(), events.SurebetNotify{
		SurebetID:      id,
		Side:           req.Side,
		ScreenshotRefs: req.ScreenshotRefs,
		RequestedBy:    actorOrDefault(req.Actor),
	}); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"status":"QUEUED"}`))
}

// decodeOutcomes parseia e valida o mapa betId -> outcome do operador
func (s *Server) decodeOutcomes(w http.ResponseWriter, r *http.Request) (map[string]domain.Outcome, bool) {
	var req dto.SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return nil, false
	}
	if len(req.Outcomes) == 0 {
		http.Error(w, "outcomes required", http.StatusBadRequest)
		return nil, false
	}
	outcomes := make(map[string]domain.Outcome, len(req.Outcomes))
	for betID, o := range req.Outcomes {
		outcomes[betID] = domain.Outcome(o)
	}
	return outcomes, true
}

func previewResponse(plan *domain.SettlementPlan) dto.SettlementPreviewResponse {
	resp := dto.SettlementPreviewResponse{
		SurebetID: plan.SurebetID,
		ProfitEUR: plan.ProfitEUR,
		Seats:     plan.Seats,
		CoordSeat: plan.CoordSeat,
		Warnings:  plan.Warnings,
	}
	for _, res := range plan.Results {
		resp.Rows = append(resp.Rows, dto.PreviewRow{
			BetID:                res.BetID,
			AssociateID:          res.AssociateID,
			Outcome:              string(res.Outcome),
			SeatKind:             string(res.SeatKind),
			NetGainEUR:           res.NetGainEUR,
			PrincipalReturnedEUR: res.PrincipalReturnedEUR,
			ShareEUR:             res.ShareEUR,
			EntitlementEUR:       res.PrincipalReturnedEUR.Add(res.ShareEUR),
		})
	}
	if plan.CoordSeat {
		resp.Rows = append(resp.Rows, dto.PreviewRow{
			AssociateID:          plan.CoordAssociateID,
			SeatKind:             string(domain.SeatNonStaked),
			NetGainEUR:           decimal.Zero,
			PrincipalReturnedEUR: decimal.Zero,
			ShareEUR:             plan.CoordShareEUR,
			EntitlementEUR:       plan.CoordShareEUR,
		})
	}
	return resp
}

func betResponse(b domain.Bet) map[string]any {
	resp := map[string]any{
		"id":           b.ID,
		"associate_id": b.AssociateID,
		"bookmaker_id": b.BookmakerID,
		"event_id":     b.EventID,
		"market_code":  b.MarketCode,
		"period_scope": b.PeriodScope,
		"selection":    string(b.Selection),
		"stake":        b.Stake,
		"odds":         b.Odds,
		"payout":       b.Payout,
		"currency":     b.Currency,
		"supported":    b.Supported,
		"status":       string(b.Status),
	}
	if b.LineValue.Valid {
		resp["line_value"] = b.LineValue.Decimal
	}
	if b.Outcome != "" {
		resp["settlement_outcome"] = string(b.Outcome)
	}
	if b.SurebetID != "" {
		resp["surebet_id"] = b.SurebetID
	}
	return resp
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return "operator"
	}
	return actor
}
