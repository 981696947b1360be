package model

// Коллекции, изменения которых публикуются в live-ленту
const (
	CollectionUsers    = "users"
	CollectionSlots    = "lessonSlots"
	CollectionBookings = "bookings"
	CollectionHomework = "homework"
)

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// Change уведомление об изменении документа. Доставка at-least-once,
// подписчики должны перечитывать состояние, а не применять дельту.
type Change struct {
	Collection string     `json:"collection"`
	Kind       ChangeKind `json:"kind"`
	ID         string     `json:"id"`
}
