package queue

import (
	"context"

	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// Reloader is implemented by store.GraphStore.
type Reloader interface {
	Reload(ctx context.Context) (*graph.Graph, error)
}

// ListenForReloads reloads r for every message on the reload topic until ctx
// is done or deliveries is closed.
func ListenForReloads(ctx context.Context, deliveries <-chan amqp091.Delivery, r Reloader) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("[Queue] Reload subscription closed")
				return
			}
			msg, err := ParseGraphReload(d.Body)
			if err != nil {
				logger.Warn("[Queue] Ignoring reload message", "err", err)
				continue
			}
			logger.Info("[Queue] Reload requested", "correlation_id", msg.CorrelationID, "key", msg.Key)
			if _, err := r.Reload(ctx); err != nil {
				logger.Error("[Queue] Reload failed", "correlation_id", msg.CorrelationID, "err", err)
			}
		}
	}
}
