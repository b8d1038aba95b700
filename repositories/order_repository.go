package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"resto-pos/models"
)

// OrderRepository is the devserver's in-memory order table. It stands in
// for the real backend's persistence so the client can be run and tested
// hermetically; the data is fixture data, not product state.
type OrderRepository struct {
	mu     sync.Mutex
	orders map[int]models.Order
	nextID int
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[int]models.Order),
		nextID: 1,
	}
}

func (r *OrderRepository) List(status *models.Status) []models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *OrderRepository) GetByID(id int) (models.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	return o, ok
}

func (r *OrderRepository) GetByCode(code string) (models.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.TransactionCode == code {
			return o, true
		}
	}
	return models.Order{}, false
}

// Insert assigns the id, transaction code, and creation time, and defaults
// status and payment to the initial states.
func (r *OrderRepository) Insert(o models.Order) models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	if o.TransactionCode == "" {
		o.TransactionCode = fmt.Sprintf("TRX-%05d", o.ID)
	}
	if o.Status == "" {
		o.Status = models.StatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentUnpaid
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Total == 0 {
		for _, line := range o.Items {
			o.Total += int64(line.Quantity) * line.UnitPrice
		}
	}
	r.orders[o.ID] = o
	return o
}

// Replace stores a whole updated record by id.
func (r *OrderRepository) Replace(o models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}

// SeedDemo loads a small recognizable fixture set.
func (r *OrderRepository) SeedDemo() {
	note := "no sugar"
	r.Insert(models.Order{
		CustomerName: "Dina",
		Type:         models.OrderTypeDineIn,
		Table:        &models.TableRef{ID: 4, Name: "T4", Location: "Terrace"},
		Items: []models.OrderLine{
			{Quantity: 2, ProductName: "Nasi Goreng", UnitPrice: 35000},
			{Quantity: 1, ProductName: "Es Teh", UnitPrice: 8000, Note: &note},
		},
	})
	r.Insert(models.Order{
		CustomerName: "Bram",
		Type:         models.OrderTypeTakeaway,
		Items: []models.OrderLine{
			{Quantity: 1, ProductName: "Ayam Bakar", UnitPrice: 42000},
		},
	})
	addr := "Jl. Kenanga 12"
	r.Insert(models.Order{
		CustomerName:    "Sari",
		Type:            models.OrderTypeDelivery,
		DeliveryAddress: &addr,
		Items: []models.OrderLine{
			{Quantity: 3, ProductName: "Mie Ayam", UnitPrice: 25000},
		},
	})
}
