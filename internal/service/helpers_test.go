package service

import (
	"context"
	"sync"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository/memory"
	"pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	admin   = Actor{UserID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}
	cashier = Actor{UserID: uuid.New(), Name: "Kasir", Email: "kasir@example.com", Role: model.RoleCashier}
)

type staticPromotions []model.Promotion

func (p staticPromotions) ActivePromotions(context.Context) ([]model.Promotion, error) {
	return p, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ws.Event
}

func (n *recordingNotifier) Publish(event ws.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func seedProduct(store *memory.Store, name string, price int64, stock int) model.Product {
	return store.AddProduct(model.Product{
		SKU:           "SKU-" + uuid.NewString()[:8],
		Name:          name,
		CategoryID:    uuid.New(),
		SellingPrice:  decimal.NewFromInt(price),
		PurchasePrice: decimal.NewFromInt(price / 2),
		Stock:         stock,
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
