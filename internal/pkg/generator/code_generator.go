package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

func (g *CodeGenerator) GenerateItemID() string {
	return uuid.NewString()
}

func (g *CodeGenerator) GenerateLineID() string {
	return uuid.NewString()
}

// GenerateSaleID returns a receipt-friendly id such as S-20240611-3f2a9c1d0b.
func (g *CodeGenerator) GenerateSaleID(at time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("S-%s-%s", at.UTC().Format("20060102"), random)
}
