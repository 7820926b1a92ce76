// Package notify holds outbound signal adapters. The stock recorder is an
// external system; until a transport to it is configured the signals are
// logged so operators can replay them.
package notify

import (
	"context"

	"github.com/erp/settlement/internal/domain/stock"
	"go.uber.org/zap"
)

// LogStockNotifier writes stock reversal signals to the log
type LogStockNotifier struct {
	logger *zap.Logger
}

// NewLogStockNotifier creates a new LogStockNotifier
func NewLogStockNotifier(logger *zap.Logger) *LogStockNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogStockNotifier{logger: logger}
}

// SignalReversal implements stock.Notifier
func (n *LogStockNotifier) SignalReversal(_ context.Context, signal stock.ReversalSignal) error {
	n.logger.Info("stock reversal signal",
		zap.String("tenant_id", signal.TenantID.String()),
		zap.String("source_entity_type", signal.SourceEntityType),
		zap.String("source_entity_id", signal.SourceEntityID.String()),
		zap.String("reason", signal.Reason),
	)
	return nil
}

var _ stock.Notifier = (*LogStockNotifier)(nil)
