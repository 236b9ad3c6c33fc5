package commands

import (
	"context"
	"strings"

	"github.com/yuzvak/resale-backoffice/internal/application/use_cases"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

type AddLineCommand struct {
	StationID string
	Serial    string
	Price     Amount
}

func (c AddLineCommand) Validate() error {
	problems := make(map[string]string)
	if strings.TrimSpace(c.Serial) == "" {
		problems["serial"] = "is required"
	}
	if p := c.Price.problem(); p != "" {
		problems["price"] = p
	}
	if len(problems) > 0 {
		return domainErrors.NewValidationError(problems)
	}
	return nil
}

type RemoveLineCommand struct {
	StationID string
	LineID    string
}

type ConfirmCommand struct {
	StationID string
}

type LedgerHandler struct {
	ledger  *use_cases.LedgerUseCase
	confirm *use_cases.ConfirmationUseCase
	log     *logger.Logger
}

func NewLedgerHandler(
	ledger *use_cases.LedgerUseCase,
	confirm *use_cases.ConfirmationUseCase,
	log *logger.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		ledger:  ledger,
		confirm: confirm,
		log:     log,
	}
}

func (h *LedgerHandler) HandleAdd(ctx context.Context, cmd AddLineCommand) (*sale.PendingLine, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	line, err := h.ledger.Add(ctx, cmd.StationID, cmd.Serial, cmd.Price.Value)
	if err != nil {
		h.log.Warn("Sale line rejected", "station_id", cmd.StationID, "serial", cmd.Serial, "error", err.Error())
		return nil, err
	}
	return line, nil
}

func (h *LedgerHandler) HandleRemove(ctx context.Context, cmd RemoveLineCommand) error {
	if strings.TrimSpace(cmd.LineID) == "" {
		return domainErrors.ErrLineNotFound
	}

	if err := h.ledger.Remove(ctx, cmd.StationID, cmd.LineID); err != nil {
		h.log.Warn("Sale line removal rejected", "station_id", cmd.StationID, "line_id", cmd.LineID, "error", err.Error())
		return err
	}
	return nil
}

func (h *LedgerHandler) HandleConfirm(ctx context.Context, cmd ConfirmCommand) (*sale.Sale, error) {
	s, err := h.confirm.Confirm(ctx, cmd.StationID)
	if err != nil {
		h.log.Warn("Sale confirmation failed", "station_id", cmd.StationID, "error", err.Error())
		return nil, err
	}
	return s, nil
}
