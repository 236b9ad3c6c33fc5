package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yuzvak/resale-backoffice/internal/application/commands"
	"github.com/yuzvak/resale-backoffice/internal/application/use_cases"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/middleware"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/response"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

// SellHandler serves the station's sale ledger, confirmation and sales history.
type SellHandler struct {
	ledgerCmd *commands.LedgerHandler
	ledger    *use_cases.LedgerUseCase
	query     *use_cases.QueryUseCase
	log       *logger.Logger
}

func NewSellHandler(
	ledgerCmd *commands.LedgerHandler,
	ledger *use_cases.LedgerUseCase,
	query *use_cases.QueryUseCase,
	log *logger.Logger,
) *SellHandler {
	return &SellHandler{
		ledgerCmd: ledgerCmd,
		ledger:    ledger,
		query:     query,
		log:       log,
	}
}

func (h *SellHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	metrics := monitoring.NewLedgerMetrics("add")

	var req LineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.RecordFailure(err)
		response.WriteDomainError(w, err)
		return
	}

	line, err := h.ledgerCmd.HandleAdd(r.Context(), commands.AddLineCommand{
		StationID: middleware.StationFrom(r.Context()),
		Serial:    req.Serial,
		Price:     req.Price,
	})
	if err != nil {
		metrics.RecordFailure(err)
		response.WriteDomainError(w, err)
		return
	}

	metrics.RecordSuccess()
	response.WriteCreated(w, toLineResponse(line))
}

func (h *SellHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	lines, total, err := h.ledger.List(r.Context(), middleware.StationFrom(r.Context()))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	resp := LedgerResponse{
		Lines: make([]LineResponse, 0, len(lines)),
		Total: total,
		Count: len(lines),
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, toLineResponse(line))
	}
	response.WriteSuccess(w, resp)
}

func (h *SellHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	metrics := monitoring.NewLedgerMetrics("remove")

	err := h.ledgerCmd.HandleRemove(r.Context(), commands.RemoveLineCommand{
		StationID: middleware.StationFrom(r.Context()),
		LineID:    chi.URLParam(r, "id"),
	})
	if err != nil {
		metrics.RecordFailure(err)
		response.WriteDomainError(w, err)
		return
	}

	metrics.RecordSuccess()
	response.WriteNoContent(w)
}

func (h *SellHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	metrics := monitoring.NewConfirmMetrics()
	metrics.RecordAttempt()

	station := middleware.StationFrom(r.Context())
	s, err := h.ledgerCmd.HandleConfirm(r.Context(), commands.ConfirmCommand{StationID: station})
	if err != nil {
		metrics.RecordFailure(err)
		response.WriteDomainError(w, err)
		return
	}

	metrics.RecordSuccess(s.Total, s.LineCount())
	response.WriteCreated(w, toSaleResponse(s))
}

// HandleHistory lists sales across all stations unless ?station= narrows it.
func (h *SellHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	sales, err := h.query.ListSales(r.Context(), sale.Filter{
		StationID: r.URL.Query().Get("station"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	resp := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		resp = append(resp, toSaleResponse(s))
	}
	response.WriteSuccess(w, resp)
}

func (h *SellHandler) HandleGetSale(w http.ResponseWriter, r *http.Request) {
	s, err := h.query.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, toSaleResponse(s))
}
