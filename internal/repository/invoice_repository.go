package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// InMemoryInvoiceRepository is a map-backed invoice store
type InMemoryInvoiceRepository struct {
	invoices map[uuid.UUID]domain.Invoice
	mutex    sync.RWMutex
	log      *logger.Logger
}

// NewInMemoryInvoiceRepository creates an in-memory invoice repository
func NewInMemoryInvoiceRepository(log *logger.Logger) *InMemoryInvoiceRepository {
	return &InMemoryInvoiceRepository{
		invoices: make(map[uuid.UUID]domain.Invoice),
		log:      log,
	}
}

// Create stores a new invoice
func (r *InMemoryInvoiceRepository) Create(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.invoices[invoice.ID] = invoice
	return invoice, nil
}

// GetByID returns an invoice by ID
func (r *InMemoryInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	invoice, exists := r.invoices[id]
	if !exists {
		return domain.Invoice{}, domain.ErrNotFound
	}

	return invoice, nil
}

// ListByMerchant returns the merchant's invoices, newest first
func (r *InMemoryInvoiceRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Invoice, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Invoice, 0)
	for _, invoice := range r.invoices {
		if invoice.MerchantID == merchantID {
			matches = append(matches, invoice)
		}
	}

	sortInvoices(matches)
	return matches, nil
}

// ListAll returns every invoice, newest first
func (r *InMemoryInvoiceRepository) ListAll(ctx context.Context) ([]domain.Invoice, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Invoice, 0, len(r.invoices))
	for _, invoice := range r.invoices {
		matches = append(matches, invoice)
	}

	sortInvoices(matches)
	return matches, nil
}

// Update overwrites an existing invoice
func (r *InMemoryInvoiceRepository) Update(ctx context.Context, invoice domain.Invoice) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.invoices[invoice.ID]; !exists {
		return domain.ErrNotFound
	}

	invoice.UpdatedAt = time.Now()
	r.invoices[invoice.ID] = invoice
	return nil
}

func sortInvoices(invoices []domain.Invoice) {
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
}
