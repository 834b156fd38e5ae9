// Package notify доставляет события о присуждении поставщикам и операторам.
// Доставка выполняется после фиксации транзакции, ошибки не откатывают
// изменения.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Типы событий.
const (
	AwardWon      = "AWARD_WON"
	AwardRevoked  = "AWARD_REVOKED"
	UnquotedItems = "UNQUOTED_ITEMS"
	Evaluated     = "SOLICITATION_EVALUATED"
)

// OperatorRole - адресат событий, требующих внимания оператора.
const OperatorRole = "OPERATOR"

// Recipient - поставщик или роль.
type Recipient struct {
	SupplierID string `json:"supplierId,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Key возвращает ключ для партиционирования сообщений.
func (r Recipient) Key() string {
	if r.SupplierID != "" {
		return r.SupplierID
	}
	return r.Role
}

// Event - сообщение, отправляемое во внешние каналы.
type Event struct {
	Type      string         `json:"type"`
	Recipient Recipient      `json:"recipient"`
	Payload   map[string]any `json:"payload"`
}

// Notifier отправляет событие адресату.
type Notifier interface {
	Notify(ctx context.Context, to Recipient, eventType string, payload map[string]any) error
}

// Multi рассылает событие во все каналы и собирает ошибки.
type Multi []Notifier

// Notify реализует Notifier.
func (m Multi) Notify(ctx context.Context, to Recipient, eventType string, payload map[string]any) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, to, eventType, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier только пишет событие в лог.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier создаёт новый экземпляр LogNotifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify реализует Notifier.
func (n *LogNotifier) Notify(_ context.Context, to Recipient, eventType string, payload map[string]any) error {
	n.log.Info("notification",
		zap.String("event", eventType),
		zap.String("supplier_id", to.SupplierID),
		zap.String("role", to.Role),
		zap.Any("payload", payload),
	)
	return nil
}
