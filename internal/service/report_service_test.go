package service

import (
	"testing"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBuildProfitReport(t *testing.T) {
	kopi := &model.Product{Name: "Kopi", PurchasePrice: decimal.NewFromInt(6000)}
	teh := &model.Product{Name: "Teh", PurchasePrice: decimal.NewFromInt(2000)}
	sales := []model.Sale{
		{
			ID:            uuid.New(),
			InvoiceNumber: "INV-1",
			Items: []model.SaleItem{
				{Product: kopi, Quantity: 2, PriceAtSale: decimal.NewFromInt(10000)},
				{Product: teh, Quantity: 1, PriceAtSale: decimal.NewFromInt(5000)},
			},
		},
		{
			ID:            uuid.New(),
			InvoiceNumber: "INV-2",
			Items: []model.SaleItem{
				{Product: kopi, Quantity: 1, PriceAtSale: decimal.NewFromInt(8000)},
			},
		},
	}

	report := BuildProfitReport(sales)
	if len(report.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(report.Lines))
	}
	if !report.Revenue.Equal(decimal.NewFromInt(33000)) {
		t.Fatalf("expected revenue 33000, got %s", report.Revenue)
	}
	if !report.CostOfGoods.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected cost 20000, got %s", report.CostOfGoods)
	}
	if !report.Profit.Equal(decimal.NewFromInt(13000)) {
		t.Fatalf("expected profit 13000, got %s", report.Profit)
	}
	if !report.Lines[2].Profit.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected last line profit 2000, got %s", report.Lines[2].Profit)
	}
}

func TestBuildProfitReportEmpty(t *testing.T) {
	report := BuildProfitReport(nil)
	if !report.Profit.IsZero() || report.Lines == nil {
		t.Fatalf("expected zero profit and an empty line list")
	}
}
