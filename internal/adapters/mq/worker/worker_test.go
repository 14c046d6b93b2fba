package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/squad/internal/adapters/mq/queue"
	worker "github.com/okian/squad/internal/adapters/mq/worker"
	model "github.com/okian/squad/internal/domain/model"
	logging "github.com/okian/squad/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	events    chan queue.Event
	closeOnce sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{events: make(chan queue.Event, 64)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Event { return mq.events }

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.events) })
	return nil
}

func (mq *mockQueue) add(e queue.Event) { mq.events <- e } //nolint:gocritic // hugeParam

var errBoom = errors.New("boom")

type mockUpdater struct {
	mu      sync.Mutex
	skills  map[string]model.Skills
	calls   int
	failFor map[string]error
}

func newMockUpdater() *mockUpdater {
	return &mockUpdater{skills: make(map[string]model.Skills), failFor: make(map[string]error)}
}

func (m *mockUpdater) UpdateSkills(_ context.Context, id string, s model.Skills, _ time.Time) (model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.failFor[id]; ok {
		return model.Player{}, err
	}
	m.skills[id] = s
	return model.Player{ID: id, Name: id, Skills: s}, nil
}

func (m *mockUpdater) get(id string) (model.Skills, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.skills[id]
	return s, ok
}

func (m *mockUpdater) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func ratingEvent(id, player string, s model.Skills) queue.Event {
	return queue.Event{EventID: id, PlayerID: player, Skills: s, TS: time.Now()}
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func quietLogger() logging.Logger { return logging.New(io.Discard, logging.FormatText) }

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))

		q := newMockQueue()
		updater := newMockUpdater()
		w := worker.NewInMemoryWorker(q, updater, worker.WithName("w-test"), worker.WithLogger(quietLogger()))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a valid rating arrives", func() {
			s := model.Skills{Speed: 5, Knowledge: 4, Strength: 3, Power: 2, Vision: 1}
			q.add(ratingEvent("r1", "p1", s))

			convey.Convey("Then the player's skills are replaced", func() {
				convey.So(eventually(func() bool {
					got, ok := updater.get("p1")
					return ok && got == s
				}), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a rating is out of range", func() {
			q.add(ratingEvent("r1", "p1", model.UniformSkills(9)))
			q.add(ratingEvent("r2", "p2", model.DefaultSkills()))

			convey.Convey("Then it is skipped and the next event still applies", func() {
				convey.So(eventually(func() bool {
					_, ok := updater.get("p2")
					return ok
				}), convey.ShouldBeTrue)
				_, ok := updater.get("p1")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(updater.callCount(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the store rejects the update", func() {
			updater.mu.Lock()
			updater.failFor["ghost"] = errBoom
			updater.mu.Unlock()
			q.add(ratingEvent("r1", "ghost", model.DefaultSkills()))
			q.add(ratingEvent("r2", "p2", model.DefaultSkills()))

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool {
					_, ok := updater.get("p2")
					return ok
				}), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shutting down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second call is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))
		w := worker.NewInMemoryWorker(newMockQueue(), newMockUpdater())
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		cancel()

		convey.Convey("Then Run returns", func() {
			select {
			case <-w.Done():
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real queue", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))

		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		updater := newMockUpdater()
		pool := worker.NewPool(4, q, updater, worker.WithLogger(quietLogger()))
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many ratings are submitted and the pool shuts down", func() {
			const n = 200
			for i := 0; i < n; i++ {
				err := q.Enqueue(ctx, ratingEvent(fmt.Sprintf("r%d", i), fmt.Sprintf("p%d", i), model.UniformSkills(1+i%5)))
				convey.So(err, convey.ShouldBeNil)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued rating is applied before workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(updater.callCount(), convey.ShouldEqual, n)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with no explicit size", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))
		pool := worker.NewPool(0, newMockQueue(), newMockUpdater())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
