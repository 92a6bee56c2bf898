// Package events defines domain events that represent significant business occurrences.
// Events are immutable facts about what happened in the past.
//
// Events are written to the transactional outbox in the same Tx as the state
// change they describe, so consumers never observe an event without its state
// or vice versa.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/domain/valueobjects"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID // ID of the entity that raised this event
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	eventID     uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID uuid.UUID
}

func newBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		occurredAt:  time.Now().UTC(),
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID {
	return e.eventID
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e BaseEvent) AggregateID() uuid.UUID {
	return e.aggregateID
}

// Event Types (constants for type checking)
const (
	EventTypeUserRegistered    = "user.registered"
	EventTypeAccountOpened     = "account.opened"
	EventTypeTransactionPosted = "transaction.posted"
)

// UserRegistered is raised when a new user signs up.
type UserRegistered struct {
	BaseEvent
	Email    string
	FullName string
}

func NewUserRegistered(userID uuid.UUID, email, fullName string) *UserRegistered {
	return &UserRegistered{
		BaseEvent: newBaseEvent(EventTypeUserRegistered, userID),
		Email:     email,
		FullName:  fullName,
	}
}

// AccountOpened is raised when the registry materializes a new account,
// whether user-owned or system-owned.
type AccountOpened struct {
	BaseEvent
	OwnerUserID *uuid.UUID
	AccountType string
	Currency    valueobjects.Currency
}

func NewAccountOpened(accountID uuid.UUID, ownerUserID *uuid.UUID, accountType string, currency valueobjects.Currency) *AccountOpened {
	return &AccountOpened{
		BaseEvent:   newBaseEvent(EventTypeAccountOpened, accountID),
		OwnerUserID: ownerUserID,
		AccountType: accountType,
		Currency:    currency,
	}
}

// TransactionPosted is raised when a double-entry posting commits.
// One event per transaction, not per ledger entry.
type TransactionPosted struct {
	BaseEvent
	Reference       string
	TransactionType string
	Amount          valueobjects.Money
	Currency        valueobjects.Currency
	UserID          *uuid.UUID
	AccountID       uuid.UUID
}

func NewTransactionPosted(
	transactionID uuid.UUID,
	reference string,
	transactionType string,
	amount valueobjects.Money,
	currency valueobjects.Currency,
	userID *uuid.UUID,
	accountID uuid.UUID,
) *TransactionPosted {
	return &TransactionPosted{
		BaseEvent:       newBaseEvent(EventTypeTransactionPosted, transactionID),
		Reference:       reference,
		TransactionType: transactionType,
		Amount:          amount,
		Currency:        currency,
		UserID:          userID,
		AccountID:       accountID,
	}
}
