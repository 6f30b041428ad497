// Package journal keeps a local copy of every sale the remote API confirmed,
// so receipts can be reprinted without a round trip.
package journal

import (
	"context"
	"errors"
	"sort"
	"sync"

	"feedmart-pos/internal/models"
)

var ErrNotFound = errors.New("sale not found in journal")

const DefaultListLimit = 50

type Journal interface {
	Record(ctx context.Context, sale models.CompletedSale) error
	Get(ctx context.Context, saleID string) (models.CompletedSale, error)
	// ListByCashier returns the cashier's most recent sales, newest first.
	ListByCashier(ctx context.Context, cashierID int64, limit int) ([]models.CompletedSale, error)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return DefaultListLimit
	}
	return limit
}

// Memory is the journal used when no database is configured. It is lost on
// restart.
type Memory struct {
	mu    sync.RWMutex
	sales map[string]models.CompletedSale
	order []string
}

func NewMemory() *Memory {
	return &Memory{sales: make(map[string]models.CompletedSale)}
}

// Record keeps the first copy of a sale id, matching GormJournal.
func (m *Memory) Record(ctx context.Context, sale models.CompletedSale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[sale.ID]; ok {
		return nil
	}
	m.order = append(m.order, sale.ID)
	m.sales[sale.ID] = sale
	return nil
}

func (m *Memory) Get(ctx context.Context, saleID string) (models.CompletedSale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sales[saleID]
	if !ok {
		return models.CompletedSale{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) ListByCashier(ctx context.Context, cashierID int64, limit int) ([]models.CompletedSale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.CompletedSale
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.sales[m.order[i]]
		if s.CashierID == cashierID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}
