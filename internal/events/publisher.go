// Package events publishes catalog change notifications over NATS
// JetStream so read-side caches in other services can drop stale data.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	streamName = "CATALOG_EVENTS"

	SubjectProductsImported = "catalog.products.imported"
	SubjectDataChanged      = "catalog.data.changed"
)

// CatalogEvent is the wire shape of a catalog change notification.
type CatalogEvent struct {
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"jobId,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// Publisher publishes catalog events. All publishing is fire-and-forget:
// a failed publish is logged, never propagated to the caller.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the catalog stream exists.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"catalog.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to ensure catalog stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// ProductsImported signals that an import job committed new products.
// Consumers treat this as "catalog/product read views are stale".
func (p *Publisher) ProductsImported(ctx context.Context, jobID uuid.UUID, count int) {
	p.publish(SubjectProductsImported, CatalogEvent{
		EventType: SubjectProductsImported,
		Timestamp: time.Now(),
		JobID:     jobID.String(),
		Count:     count,
	})
}

// DataChanged signals a single product or catalog mutation.
func (p *Publisher) DataChanged(ctx context.Context) {
	p.publish(SubjectDataChanged, CatalogEvent{
		EventType: SubjectDataChanged,
		Timestamp: time.Now(),
	})
}

// publish sends asynchronously so the caller's request path never waits
// on the broker.
func (p *Publisher) publish(subject string, event CatalogEvent) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal catalog event")
			return
		}

		if _, err := p.js.Publish(pubCtx, subject, data); err != nil {
			p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish catalog event")
			return
		}
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"jobId":   event.JobID,
		}).Debug("Catalog event published")
	}()
}
