package domain

import "time"

// OutboxMessage — событие, сохранённое транзакционным outbox для
// последующей публикации в брокер.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats — сводка по состоянию outbox для метрик.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
