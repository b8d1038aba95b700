// Package views holds the screen-facing projections. A projection is a
// filtered, derived read of the shared order store plus ephemeral UI state
// (search text, selected filter); it never keeps a second mutable copy of
// order data and never mutates an order in place. Mutations are issued as
// intents to the synchronizer and the projection re-renders from the next
// snapshot.
package views

import (
	"context"

	"resto-pos/models"
)

// Intents is the slice of the synchronizer a projection is allowed to use.
type Intents interface {
	SetStatus(ctx context.Context, id int, status *models.Status, payment *models.PaymentStatus) error
	LookupByCode(ctx context.Context, code string) (models.Order, error)
	RequestRefresh()
}
