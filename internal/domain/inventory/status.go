package inventory

type Status string

const (
	StatusInStock Status = "in_stock"
	StatusPending Status = "pending"
	StatusSold    Status = "sold"
)

var transitions = map[Status][]Status{
	StatusInStock: {StatusPending},
	StatusPending: {StatusSold, StatusInStock},
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusPending, StatusSold:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether an item may move from one status to another.
// Sold is terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func AllStatuses() []Status {
	return []Status{StatusInStock, StatusPending, StatusSold}
}
