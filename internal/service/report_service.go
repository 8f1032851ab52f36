package service

import (
	"context"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReportService interface {
	SalesReport(ctx context.Context, actor Actor, from, to time.Time) (*SalesReport, error)
	ProfitReport(ctx context.Context, actor Actor, from, to time.Time) (*ProfitReport, error)
}

type SalesReport struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Sales       []model.Sale    `json:"sales"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ProfitLine struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	SaleDate      time.Time       `json:"sale_date"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
}

type ProfitReport struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Revenue     decimal.Decimal `json:"revenue"`
	CostOfGoods decimal.Decimal `json:"cost_of_goods"`
	Profit      decimal.Decimal `json:"profit"`
	Lines       []ProfitLine    `json:"lines"`
}

type reportService struct {
	sales repository.SaleRepository
}

func NewReportService(sales repository.SaleRepository) ReportService {
	return &reportService{sales: sales}
}

func (s *reportService) SalesReport(ctx context.Context, actor Actor, from, to time.Time) (*SalesReport, error) {
	sales, err := s.salesInRange(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalAmount)
	}
	return &SalesReport{From: from, To: to, Sales: sales, Count: len(sales), TotalAmount: total}, nil
}

func (s *reportService) ProfitReport(ctx context.Context, actor Actor, from, to time.Time) (*ProfitReport, error) {
	sales, err := s.salesInRange(ctx, actor, from, to)
	if err != nil {
		return nil, err
	}
	report := BuildProfitReport(sales)
	report.From = from
	report.To = to
	return report, nil
}

func (s *reportService) salesInRange(ctx context.Context, actor Actor, from, to time.Time) ([]model.Sale, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperror.Validation("'to' must be after 'from'")
	}

	sales, err := s.sales.FindByDateRange(ctx, from, to)
	if err != nil {
		err = apperror.FromDB(err, "sale")
		logInternal("report", "salesInRange", "find sales", map[string]time.Time{"from": from, "to": to}, err)
		return nil, err
	}
	return sales, nil
}

// BuildProfitReport costs every sold line at the product's purchase price
// (HPP). Sale items must carry their Product.
func BuildProfitReport(sales []model.Sale) *ProfitReport {
	report := &ProfitReport{
		Revenue:     decimal.Zero,
		CostOfGoods: decimal.Zero,
		Profit:      decimal.Zero,
		Lines:       []ProfitLine{},
	}

	for _, sale := range sales {
		for _, item := range sale.Items {
			qty := decimal.NewFromInt(int64(item.Quantity))
			revenue := item.Subtotal()
			cost := decimal.Zero
			name := ""
			if item.Product != nil {
				cost = item.Product.PurchasePrice.Mul(qty)
				name = item.Product.Name
			}

			report.Lines = append(report.Lines, ProfitLine{
				SaleID:        sale.ID,
				InvoiceNumber: sale.InvoiceNumber,
				SaleDate:      sale.SaleDate,
				ProductID:     item.ProductID,
				ProductName:   name,
				Quantity:      item.Quantity,
				Revenue:       revenue,
				Cost:          cost,
				Profit:        revenue.Sub(cost),
			})
			report.Revenue = report.Revenue.Add(revenue)
			report.CostOfGoods = report.CostOfGoods.Add(cost)
		}
	}
	report.Profit = report.Revenue.Sub(report.CostOfGoods)
	return report
}
