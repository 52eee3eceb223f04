package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-hrms/internal/events"
	"go-hrms/internal/leavebalance"
	balanceerrors "go-hrms/internal/leavebalance/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeEmployeeLifecycle seeds the new hire's leave ledger for the
// joining year. Redelivered events hit the seeded-already path and are
// committed without a second write.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	ledger leavebalance.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeOnboardedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee_onboarded event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		err = ledger.Seed(ctx, event.EmployeeID, event.JoiningYear, leavebalance.DefaultAllotments())
		if err != nil {
			if errors.Is(err, balanceerrors.ErrBalanceAlreadySeeded) {
				log.Warn("leave balances already seeded for event, skipping",
					zap.String("employee_id", event.EmployeeID),
					zap.Int("joining_year", event.JoiningYear),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("seed leave balances failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Int("joining_year", event.JoiningYear),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("leave balances seeded from employee_onboarded event",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("joining_year", event.JoiningYear),
		)
	}
}
