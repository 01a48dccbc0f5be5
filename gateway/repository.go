package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/cardflow/paygate/gateway/models"
)

// Repository keeps payments in memory for the life of the process.
type Repository struct {
	mu       sync.RWMutex
	payments map[string]models.Payment
}

func NewRepository() *Repository {
	return &Repository{
		payments: make(map[string]models.Payment),
	}
}

// Add stores payment under its ID. An existing ID is never overwritten.
func (r *Repository) Add(_ context.Context, payment models.Payment) (models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.ID]; ok {
		return models.Payment{}, fmt.Errorf("payment %s: %w", payment.ID, ErrDuplicateID)
	}
	r.payments[payment.ID] = payment
	return payment, nil
}

func (r *Repository) Get(_ context.Context, id string) (models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return models.Payment{}, ErrNotFound
	}
	return payment, nil
}
