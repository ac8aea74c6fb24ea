package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/database"
	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeProductSaved   EventType = "PRODUCT_SAVED"
	EventTypeProductDeleted EventType = "PRODUCT_DELETED"

	AggregateRegistryProduct = "registry_product"
)

// ProductPayload is the body of PRODUCT_SAVED and PRODUCT_DELETED events.
type ProductPayload struct {
	EventID       string          `json:"eventId"`
	EventType     EventType       `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	ProductID     int64           `json:"productId"`
	RegistryID    int64           `json:"registryId"`
	UserID        int64           `json:"userId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ProductURL    *string         `json:"productUrl,omitempty"`
	StoreURL      *string         `json:"storeUrl,omitempty"`
	AffiliateLink *string         `json:"affiliateLink,omitempty"`
}

// OutboxWriter stores an event in the caller's transaction.
type OutboxWriter interface {
	InsertWithTx(ctx context.Context, tx pgx.Tx, event *database.OutboxEvent) error
}

// Publisher turns registry changes into outbox events. Events become visible
// to the relay only when the surrounding transaction commits.
type Publisher struct {
	outbox OutboxWriter
	stream string
	logger *slog.Logger
}

func NewPublisher(outbox OutboxWriter, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = database.DefaultStream
	}
	return &Publisher{
		outbox: outbox,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) ProductSaved(ctx context.Context, tx pgx.Tx, userID int64, product *models.SavedProduct) error {
	return p.PublishWithTx(ctx, tx, EventTypeProductSaved, newProductPayload(userID, product))
}

func (p *Publisher) ProductDeleted(ctx context.Context, tx pgx.Tx, userID int64, product *models.SavedProduct) error {
	return p.PublishWithTx(ctx, tx, EventTypeProductDeleted, newProductPayload(userID, product))
}

func (p *Publisher) PublishWithTx(ctx context.Context, tx pgx.Tx, eventType EventType, payload *ProductPayload) error {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}
	payload.EventType = eventType

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	event := &database.OutboxEvent{
		AggregateType: AggregateRegistryProduct,
		AggregateID:   strconv.FormatInt(payload.ProductID, 10),
		EventType:     string(eventType),
		Payload:       data,
		TargetStream:  p.stream,
	}

	if err := p.outbox.InsertWithTx(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.Info("event written to outbox",
		"type", eventType,
		"event_id", payload.EventID,
		"product_id", payload.ProductID,
		"outbox_id", event.ID,
	)

	return nil
}

func newProductPayload(userID int64, product *models.SavedProduct) *ProductPayload {
	return &ProductPayload{
		ProductID:     product.ID,
		RegistryID:    product.RegistryID,
		UserID:        userID,
		Name:          product.Name,
		Price:         product.Price,
		ProductURL:    product.ProductURL,
		StoreURL:      product.StoreURL,
		AffiliateLink: product.AffiliateLink,
	}
}
