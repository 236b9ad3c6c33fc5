package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
)

// Attributes are the mutable, descriptive fields of a unit. The source fields
// describe who the unit was bought from.
type Attributes struct {
	Name          string
	ReleaseModel  string
	Color         string
	Price         decimal.Decimal
	SourceName    string
	SourcePhone   string
	SourceAddress string
	Remarks       string
}

func (a Attributes) Normalize() Attributes {
	a.Name = strings.TrimSpace(a.Name)
	a.ReleaseModel = strings.TrimSpace(a.ReleaseModel)
	a.Color = strings.TrimSpace(a.Color)
	a.SourceName = strings.TrimSpace(a.SourceName)
	a.SourcePhone = strings.TrimSpace(a.SourcePhone)
	a.SourceAddress = strings.TrimSpace(a.SourceAddress)
	a.Remarks = strings.TrimSpace(a.Remarks)
	return a
}

// Problems returns field-level violations, keyed by the JSON field name.
func (a Attributes) Problems() map[string]string {
	problems := make(map[string]string)
	if a.Name == "" {
		problems["name"] = "is required"
	}
	if a.ReleaseModel == "" {
		problems["release"] = "is required"
	}
	if a.SourceName == "" {
		problems["customerName"] = "is required"
	}
	if p := PriceProblem(a.Price); p != "" {
		problems["price"] = p
	}

	for field, check := range map[string]struct {
		value string
		max   int
	}{
		"name":          {a.Name, MaxTextLength},
		"release":       {a.ReleaseModel, MaxTextLength},
		"color":         {a.Color, MaxShortLength},
		"customerName":  {a.SourceName, MaxTextLength},
		"customerPhone": {a.SourcePhone, MaxShortLength},
	} {
		if _, reported := problems[field]; reported {
			continue
		}
		if p := LengthProblem(check.value, check.max); p != "" {
			problems[field] = p
		}
	}
	return problems
}

type Item struct {
	ID     string
	Serial string
	Attributes
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewItem(id, serial string, attrs Attributes, now time.Time) (*Item, error) {
	attrs = attrs.Normalize()
	serial = strings.TrimSpace(serial)

	problems := attrs.Problems()
	if serial == "" {
		problems["serial"] = "is required"
	} else if p := LengthProblem(serial, MaxSerialLength); p != "" {
		problems["serial"] = p
	}
	if len(problems) > 0 {
		return nil, domainErrors.NewValidationError(problems)
	}

	return &Item{
		ID:         id,
		Serial:     serial,
		Attributes: attrs,
		Status:     StatusInStock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (i *Item) IsSold() bool {
	return i.Status == StatusSold
}

func (i *Item) CanEdit() error {
	if i.IsSold() {
		return domainErrors.ErrItemSold
	}
	return nil
}

func (i *Item) CanRemove() error {
	switch i.Status {
	case StatusSold:
		return domainErrors.ErrItemSold
	case StatusPending:
		return domainErrors.ErrItemPending
	}
	return nil
}

// CanAddToLedger explains why an item cannot be put on a sale line.
func (i *Item) CanAddToLedger() error {
	switch i.Status {
	case StatusPending:
		return domainErrors.ErrItemAlreadyPending
	case StatusSold:
		return domainErrors.ErrItemAlreadySold
	}
	return nil
}

// Apply replaces the descriptive fields. Serial and status are left alone.
func (i *Item) Apply(attrs Attributes, now time.Time) error {
	if err := i.CanEdit(); err != nil {
		return err
	}

	attrs = attrs.Normalize()
	if problems := attrs.Problems(); len(problems) > 0 {
		return domainErrors.NewValidationError(problems)
	}

	i.Attributes = attrs
	i.UpdatedAt = now
	return nil
}

type Filter struct {
	Query  string
	Status Status
	Limit  int
	Offset int
}

// Pattern is the lower-cased LIKE pattern for Query, or "" when unset.
func (f Filter) Pattern() string {
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}
