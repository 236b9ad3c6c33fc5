package generator

import (
	"fmt"
	"strconv"
)

const minSerialSuffixWidth = 3

// SerialSequence expands a serial into one serial per unit. A single unit keeps
// the serial as given; otherwise it is a prefix and each unit gets a
// zero-padded, 1-based suffix: ABC-001, ABC-002, ...
func SerialSequence(serial string, quantity int) ([]string, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if quantity == 1 {
		return []string{serial}, nil
	}

	width := len(strconv.Itoa(quantity))
	if width < minSerialSuffixWidth {
		width = minSerialSuffixWidth
	}

	serials := make([]string, quantity)
	for i := range serials {
		serials[i] = fmt.Sprintf("%s-%0*d", serial, width, i+1)
	}
	return serials, nil
}
