package validator

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type priceLine struct {
	ProductID uuid.UUID       `validate:"uuid_required"`
	Quantity  int             `validate:"gt=0"`
	Price     decimal.Decimal `validate:"gte=0"`
}

func TestValidateStructAcceptsValidLine(t *testing.T) {
	line := priceLine{ProductID: uuid.New(), Quantity: 2, Price: decimal.NewFromInt(1500)}
	if errs := ValidateStruct(&line); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %d", len(errs))
	}
}

func TestValidateStructRejectsNilUUIDAndNegativePrice(t *testing.T) {
	line := priceLine{Quantity: 1, Price: decimal.NewFromInt(-1)}
	errs := ValidateStruct(&line)
	if len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(errs))
	}
	if errs[0].Tag != "uuid_required" {
		t.Fatalf("expected uuid_required failure first, got %s", errs[0].Tag)
	}
	if errs[1].Tag != "gte" {
		t.Fatalf("expected gte failure second, got %s", errs[1].Tag)
	}
}

func TestFirstErrorMessage(t *testing.T) {
	msg := FirstError(&priceLine{ProductID: uuid.New(), Quantity: 0})
	if !strings.Contains(msg, "Quantity") || !strings.Contains(msg, "gt") {
		t.Fatalf("expected message naming Quantity and gt, got %q", msg)
	}
	if FirstError(&priceLine{ProductID: uuid.New(), Quantity: 1}) != "" {
		t.Fatalf("expected empty message for valid struct")
	}
}

func TestValidateStructHandlesNonStruct(t *testing.T) {
	errs := ValidateStruct(nil)
	if len(errs) != 1 {
		t.Fatalf("expected a single error for nil input, got %d", len(errs))
	}
}

type method string

func (m method) IsValid() bool { return m == "CASH" || m == "QRIS" }

type checkout struct {
	Method method `validate:"required,enum"`
}

func TestEnumTag(t *testing.T) {
	if errs := ValidateStruct(&checkout{Method: "QRIS"}); len(errs) != 0 {
		t.Fatalf("expected QRIS to pass, got %d errors", len(errs))
	}
	errs := ValidateStruct(&checkout{Method: "BARTER"})
	if len(errs) != 1 || errs[0].Tag != "enum" {
		t.Fatalf("expected enum failure, got %v", errs)
	}
}
