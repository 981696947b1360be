// Package feed рассылает уведомления об изменениях в хранилище.
// Подписчик получает факт изменения и сам перечитывает нужные данные.
package feed

import (
	"context"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Feed абстракция над бэкендами уведомлений
type Feed interface {
	Publish(ctx context.Context, change model.Change) error
	// Subscribe возвращает канал, который закрывается при отмене ctx
	Subscribe(ctx context.Context) (<-chan model.Change, error)
	Close() error
}

// InMemory рассылает изменения подписчикам внутри процесса
type InMemory struct {
	mu     sync.Mutex
	subs   map[int]chan model.Change
	nextID int
	buffer int
	closed bool
}

// NewInMemory создаёт фид с буфером на каждого подписчика.
// Если буфер подписчика полон, изменение для него отбрасывается:
// уже ожидающее уведомление всё равно приведёт к перечитыванию.
func NewInMemory(buffer int) *InMemory {
	if buffer <= 0 {
		buffer = 1
	}
	return &InMemory{
		subs:   make(map[int]chan model.Change),
		buffer: buffer,
	}
}

func (f *InMemory) Publish(_ context.Context, change model.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (f *InMemory) Subscribe(ctx context.Context) (<-chan model.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan model.Change, f.buffer)
	if f.closed {
		close(ch)
		return ch, nil
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	go func() {
		<-ctx.Done()
		f.unsubscribe(id)
	}()

	return ch, nil
}

func (f *InMemory) unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

// Subscribers возвращает число активных подписчиков
func (f *InMemory) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *InMemory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	return nil
}
