package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yuzvak/resale-backoffice/internal/application/commands"
	"github.com/yuzvak/resale-backoffice/internal/application/use_cases"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/response"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

// BuyHandler serves procurement: intake, edit, delete and the inventory list.
type BuyHandler struct {
	intake    *commands.IntakeHandler
	update    *commands.UpdateItemHandler
	inventory *use_cases.InventoryUseCase
	query     *use_cases.QueryUseCase
	log       *logger.Logger
}

func NewBuyHandler(
	intake *commands.IntakeHandler,
	update *commands.UpdateItemHandler,
	inventory *use_cases.InventoryUseCase,
	query *use_cases.QueryUseCase,
	log *logger.Logger,
) *BuyHandler {
	return &BuyHandler{
		intake:    intake,
		update:    update,
		inventory: inventory,
		query:     query,
		log:       log,
	}
}

func (h *BuyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	result, err := h.intake.Handle(r.Context(), commands.IntakeCommand{
		ItemFields: req.fields(),
		Quantity:   req.Quantity,
	})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	monitoring.RecordItemsProcured(len(result.Items))
	h.log.Info("Items procured", "serial", req.Serial, "count", len(result.Items))

	if item, ok := result.Single(); ok {
		response.WriteCreated(w, toItemResponse(item))
		return
	}
	response.WriteCreated(w, toItemResponses(result.Items))
}

func (h *BuyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	item, err := h.update.Handle(r.Context(), commands.UpdateItemCommand{
		ID:         chi.URLParam(r, "id"),
		ItemFields: req.fields(),
	})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, toItemResponse(item))
}

func (h *BuyHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.inventory.Remove(r.Context(), id); err != nil {
		h.log.Warn("Inventory removal rejected", "item_id", id, "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	h.log.Info("Inventory item removed", "item_id", id)
	response.WriteNoContent(w)
}

func (h *BuyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	items, err := h.query.ListItems(r.Context(), inventory.Filter{
		Query:  r.URL.Query().Get("q"),
		Status: inventory.Status(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, toItemResponses(items))
}

func (h *BuyHandler) HandleLookupSerial(w http.ResponseWriter, r *http.Request) {
	item, err := h.query.LookupBySerial(r.Context(), chi.URLParam(r, "serial"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, toItemResponse(item))
}
