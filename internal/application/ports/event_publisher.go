// Package ports - EventPublisher для публикации domain events.
//
// Pattern: Transactional Outbox
// - Событие пишется в outbox-таблицу в той же БД-транзакции,
//   что и бизнес-операция
// - Отдельный poller доставляет события из outbox наружу
package ports

import (
	"context"

	"github.com/nissmart/ledger/internal/domain/events"
)

// EventPublisher определяет контракт для публикации domain events.
//
// Единственная реализация в ядре - транзакционный outbox: Publish внутри
// UnitOfWork.Execute атомарен с бизнес-операцией.
type EventPublisher interface {
	// Publish публикует одно событие.
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch публикует несколько событий за один вызов.
	// Если одно событие не сохранилось, вся batch проваливается.
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// OutboxMessage - запись outbox-таблицы, ожидающая доставки.
type OutboxMessage struct {
	ID        string
	EventType string
	Payload   []byte
}

// OutboxRepository - интерфейс хранилища outbox-сообщений.
type OutboxRepository interface {
	// Save сохраняет событие в outbox. Выполняется в той же
	// транзакции, что и бизнес-операция.
	Save(ctx context.Context, event events.DomainEvent) error

	// FindUnpublished возвращает недоставленные сообщения для poller'а.
	FindUnpublished(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkPublished помечает сообщение как доставленное.
	MarkPublished(ctx context.Context, messageID string) error

	// MarkFailed помечает сообщение как недоставляемое с причиной.
	MarkFailed(ctx context.Context, messageID string, reason string) error
}
