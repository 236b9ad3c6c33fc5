package messaging

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
)

const (
	EventItemsProcured = "inventory.procured"
	EventSaleConfirmed = "sale.confirmed"
)

type ItemsProcuredEvent struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Items      []ProcuredItem  `json:"items"`
	Total      decimal.Decimal `json:"total"`
}

type ProcuredItem struct {
	ID     string          `json:"id"`
	Serial string          `json:"serial"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

type SaleConfirmedEvent struct {
	Type        string          `json:"type"`
	SaleID      string          `json:"saleId"`
	StationID   string          `json:"stationId"`
	Total       decimal.Decimal `json:"total"`
	LineCount   int             `json:"lineCount"`
	Lines       []SoldLine      `json:"lines"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}

type SoldLine struct {
	Position int             `json:"position"`
	ItemID   string          `json:"itemId"`
	Serial   string          `json:"serial"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

func newItemsProcuredEvent(items []*inventory.Item) ItemsProcuredEvent {
	event := ItemsProcuredEvent{
		Type:  EventItemsProcured,
		Items: make([]ProcuredItem, len(items)),
		Total: decimal.Zero,
	}
	for i, item := range items {
		event.Items[i] = ProcuredItem{
			ID:     item.ID,
			Serial: item.Serial,
			Name:   item.Name,
			Price:  item.Price,
		}
		event.Total = event.Total.Add(item.Price)
		if item.CreatedAt.After(event.OccurredAt) {
			event.OccurredAt = item.CreatedAt
		}
	}
	return event
}

func newSaleConfirmedEvent(s *sale.Sale) SaleConfirmedEvent {
	event := SaleConfirmedEvent{
		Type:        EventSaleConfirmed,
		SaleID:      s.ID,
		StationID:   s.StationID,
		Total:       s.Total,
		LineCount:   s.LineCount(),
		Lines:       make([]SoldLine, len(s.Lines)),
		ConfirmedAt: s.ConfirmedAt,
	}
	for i, l := range s.Lines {
		event.Lines[i] = SoldLine{
			Position: l.Position,
			ItemID:   l.ItemID,
			Serial:   l.Serial,
			Name:     l.ItemName,
			Price:    l.SalePrice,
		}
	}
	return event
}
