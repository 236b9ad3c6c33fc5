package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yuzvak/resale-backoffice/internal/application/commands"
	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
)

const maxBodyBytes = 1 << 20

func init() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type ItemRequest struct {
	Serial          string          `json:"serial"`
	Name            string          `json:"name"`
	Release         string          `json:"release"`
	Color           string          `json:"color"`
	Price           commands.Amount `json:"price"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Remarks         string          `json:"remarks"`
	Quantity        *int            `json:"quantity,omitempty"`
}

func (r ItemRequest) fields() commands.ItemFields {
	return commands.ItemFields{
		Serial:        r.Serial,
		Name:          r.Name,
		ReleaseModel:  r.Release,
		Color:         r.Color,
		Price:         r.Price,
		SourceName:    r.CustomerName,
		SourcePhone:   r.CustomerPhone,
		SourceAddress: r.CustomerAddress,
		Remarks:       r.Remarks,
	}
}

type ItemResponse struct {
	ID              string          `json:"id"`
	Serial          string          `json:"serial"`
	Name            string          `json:"name"`
	Release         string          `json:"release"`
	Color           string          `json:"color"`
	Price           decimal.Decimal `json:"price"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Remarks         string          `json:"remarks"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		Serial:          item.Serial,
		Name:            item.Name,
		Release:         item.ReleaseModel,
		Color:           item.Color,
		Price:           item.Price,
		CustomerName:    item.SourceName,
		CustomerPhone:   item.SourcePhone,
		CustomerAddress: item.SourceAddress,
		Remarks:         item.Remarks,
		Status:          item.Status.String(),
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func toItemResponses(items []*inventory.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

type LineRequest struct {
	Serial string          `json:"serial"`
	Price  commands.Amount `json:"price"`
}

type LineResponse struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"itemId"`
	Serial    string          `json:"serial"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toLineResponse(line *sale.PendingLine) LineResponse {
	return LineResponse{
		ID:        line.ID,
		ItemID:    line.ItemID,
		Serial:    line.Serial,
		Name:      line.ItemName,
		Price:     line.SalePrice,
		CreatedAt: line.AddedAt,
	}
}

type LedgerResponse struct {
	Lines []LineResponse  `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type SaleLineResponse struct {
	Position int             `json:"position"`
	ItemID   string          `json:"itemId"`
	Serial   string          `json:"serial"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

type SaleResponse struct {
	ID          string             `json:"id"`
	StationID   string             `json:"stationId"`
	Total       decimal.Decimal    `json:"total"`
	LineCount   int                `json:"lineCount"`
	Lines       []SaleLineResponse `json:"lines"`
	ConfirmedAt time.Time          `json:"confirmedAt"`
}

func toSaleResponse(s *sale.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineResponse{
			Position: l.Position,
			ItemID:   l.ItemID,
			Serial:   l.Serial,
			Name:     l.ItemName,
			Price:    l.SalePrice,
		})
	}
	return SaleResponse{
		ID:          s.ID,
		StationID:   s.StationID,
		Total:       s.Total,
		LineCount:   s.LineCount(),
		Lines:       lines,
		ConfirmedAt: s.ConfirmedAt,
	}
}

// decodeJSON rejects unreadable bodies as a validation error on "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return domainErrors.Invalid("body", "is required")
	default:
		return domainErrors.Invalid("body", "must be valid JSON: "+err.Error())
	}
}

// pagination reads limit and offset. Absent values are left at zero so the
// use case applies its defaults.
func pagination(r *http.Request) (limit, offset int, err error) {
	problems := make(map[string]string)
	query := r.URL.Query()

	if v := query.Get("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			problems["limit"] = "must be a non-negative integer"
		}
		limit = n
	}
	if v := query.Get("offset"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			problems["offset"] = "must be a non-negative integer"
		}
		offset = n
	}

	if len(problems) > 0 {
		return 0, 0, domainErrors.NewValidationError(problems)
	}
	return limit, offset, nil
}
