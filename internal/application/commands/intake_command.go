package commands

import (
	"context"
	"strings"

	"github.com/yuzvak/resale-backoffice/internal/application/ports"
	"github.com/yuzvak/resale-backoffice/internal/application/use_cases"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

// ItemFields are the procurement form fields shared by intake and edit.
type ItemFields struct {
	Serial        string
	Name          string
	ReleaseModel  string
	Color         string
	Price         Amount
	SourceName    string
	SourcePhone   string
	SourceAddress string
	Remarks       string
}

func (f ItemFields) attributes() inventory.Attributes {
	return inventory.Attributes{
		Name:          f.Name,
		ReleaseModel:  f.ReleaseModel,
		Color:         f.Color,
		Price:         f.Price.Value,
		SourceName:    f.SourceName,
		SourcePhone:   f.SourcePhone,
		SourceAddress: f.SourceAddress,
		Remarks:       f.Remarks,
	}.Normalize()
}

// problems gathers every field error at once so a form can show them together.
func (f ItemFields) problems(requireSerial bool) map[string]string {
	attrs := f.attributes()
	problems := attrs.Problems()
	delete(problems, "price")

	if p := f.Price.problem(); p != "" {
		problems["price"] = p
	}
	serial := strings.TrimSpace(f.Serial)
	if requireSerial && serial == "" {
		problems["serial"] = "is required"
	} else if p := inventory.LengthProblem(serial, inventory.MaxSerialLength); p != "" {
		problems["serial"] = p
	}
	return problems
}

type IntakeCommand struct {
	ItemFields
	// Quantity defaults to 1 when nil.
	Quantity *int
}

func (c IntakeCommand) Validate() error {
	problems := c.problems(true)
	if c.Quantity != nil && *c.Quantity < 1 {
		problems["quantity"] = "must be a positive integer"
	}
	if len(problems) > 0 {
		return domainErrors.NewValidationError(problems)
	}
	return nil
}

func (c IntakeCommand) quantity() int {
	if c.Quantity == nil {
		return 1
	}
	return *c.Quantity
}

type IntakeResult struct {
	Items []*inventory.Item
}

// Single reports the lone item of a one-unit intake.
func (r *IntakeResult) Single() (*inventory.Item, bool) {
	if len(r.Items) != 1 {
		return nil, false
	}
	return r.Items[0], true
}

type IntakeHandler struct {
	inventory *use_cases.InventoryUseCase
	publisher ports.EventPublisher
	log       *logger.Logger
}

func NewIntakeHandler(
	inventory *use_cases.InventoryUseCase,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *IntakeHandler {
	return &IntakeHandler{
		inventory: inventory,
		publisher: publisher,
		log:       log,
	}
}

func (h *IntakeHandler) Handle(ctx context.Context, cmd IntakeCommand) (*IntakeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, err := h.inventory.Create(ctx, cmd.Serial, cmd.attributes(), cmd.quantity())
	if err != nil {
		h.log.Warn("Procurement intake rejected", "serial", cmd.Serial, "error", err.Error())
		return nil, err
	}

	if err := h.publisher.PublishItemsProcured(ctx, items); err != nil {
		h.log.Error("Failed to publish procurement event", "serial", cmd.Serial, "error", err)
	}

	return &IntakeResult{Items: items}, nil
}

type UpdateItemCommand struct {
	ID string
	ItemFields
}

func (c UpdateItemCommand) Validate() error {
	problems := c.problems(false)
	if strings.TrimSpace(c.ID) == "" {
		problems["id"] = "is required"
	}
	if len(problems) > 0 {
		return domainErrors.NewValidationError(problems)
	}
	return nil
}

type UpdateItemHandler struct {
	inventory *use_cases.InventoryUseCase
	log       *logger.Logger
}

func NewUpdateItemHandler(inventory *use_cases.InventoryUseCase, log *logger.Logger) *UpdateItemHandler {
	return &UpdateItemHandler{
		inventory: inventory,
		log:       log,
	}
}

func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*inventory.Item, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	item, err := h.inventory.Update(ctx, cmd.ID, cmd.Serial, cmd.attributes())
	if err != nil {
		h.log.Warn("Inventory update rejected", "item_id", cmd.ID, "error", err.Error())
		return nil, err
	}
	return item, nil
}
