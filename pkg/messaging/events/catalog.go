package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/google/uuid"
)

// ProductCreatedEvent is published after a product and its variants are stored.
type ProductCreatedEvent struct {
	ProductID    uuid.UUID `json:"product_id"`
	CategoryID   uuid.UUID `json:"category_id"`
	Name         string    `json:"name"`
	VariantCount int       `json:"variant_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (p ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(p)
}
