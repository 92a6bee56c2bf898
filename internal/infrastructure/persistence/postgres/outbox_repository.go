// Package postgres - OutboxRepository для Transactional Outbox Pattern.
//
// Событие сохраняется в outbox в той же транзакции, что и бизнес-операция;
// отдельный poller забирает PENDING записи и доставляет их наружу.
// Потребитель никогда не видит событие без его состояния и наоборот.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nissmart/ledger/internal/application/ports"
	"github.com/nissmart/ledger/internal/domain/events"
)

// Compile-time check
var _ ports.OutboxRepository = (*OutboxRepository)(nil)
var _ ports.EventPublisher = (*OutboxRepository)(nil) // OutboxRepository также является EventPublisher

// OutboxRepository реализует ports.OutboxRepository и ports.EventPublisher.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository создаёт новый OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Save сохраняет событие в outbox таблицу.
// Должно выполняться в той же транзакции, что и бизнес-операция.
func (r *OutboxRepository) Save(ctx context.Context, event events.DomainEvent) error {
	q := getQuerier(ctx, r.pool)

	payload, err := serializeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	query := `
		INSERT INTO outbox (
			id, aggregate_type, aggregate_id, event_type,
			payload, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = q.Exec(ctx, query,
		event.EventID(),
		aggregateTypeOf(event.EventType()),
		event.AggregateID(),
		event.EventType(),
		payload,
		"PENDING",
		event.OccurredAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save event to outbox: %w", err)
	}

	return nil
}

// Publish реализует ports.EventPublisher поверх outbox.
func (r *OutboxRepository) Publish(ctx context.Context, event events.DomainEvent) error {
	return r.Save(ctx, event)
}

// PublishBatch сохраняет несколько событий; при первой ошибке batch проваливается.
func (r *OutboxRepository) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := r.Save(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// FindUnpublished возвращает недоставленные сообщения для poller'а.
// SKIP LOCKED позволяет нескольким poller'ам работать параллельно.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	q := getQuerier(ctx, r.pool)

	query := `
		SELECT id, event_type, payload
		FROM outbox
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find unpublished events: %w", err)
	}
	defer rows.Close()

	var messages []ports.OutboxMessage
	for rows.Next() {
		var msg ports.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.EventType, &msg.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished помечает сообщение как доставленное.
func (r *OutboxRepository) MarkPublished(ctx context.Context, messageID string) error {
	q := getQuerier(ctx, r.pool)

	query := `
		UPDATE outbox SET status = 'PUBLISHED', published_at = NOW()
		WHERE id = $1
	`
	if _, err := q.Exec(ctx, query, messageID); err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}

// MarkFailed помечает сообщение как недоставляемое.
func (r *OutboxRepository) MarkFailed(ctx context.Context, messageID string, reason string) error {
	q := getQuerier(ctx, r.pool)

	query := `
		UPDATE outbox SET status = 'FAILED', failure_reason = $2
		WHERE id = $1
	`
	if _, err := q.Exec(ctx, query, messageID, reason); err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}

// serializeEvent сериализует событие в JSON payload.
// Экспортируемые поля конкретных событий попадают в payload как есть,
// метаданные BaseEvent добавляются явно.
func serializeEvent(event events.DomainEvent) ([]byte, error) {
	envelope := map[string]any{
		"event_id":     event.EventID().String(),
		"event_type":   event.EventType(),
		"aggregate_id": event.AggregateID().String(),
		"occurred_at":  event.OccurredAt(),
		"data":         event,
	}
	return json.Marshal(envelope)
}

// aggregateTypeOf выводит тип агрегата из имени события ("user.registered" -> "user").
func aggregateTypeOf(eventType string) string {
	if i := strings.IndexByte(eventType, '.'); i > 0 {
		return eventType[:i]
	}
	return eventType
}
