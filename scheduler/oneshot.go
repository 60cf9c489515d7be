package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/sirupsen/logrus"
)

// oneShotJob is a deferred task due at a fixed instant.
type oneShotJob struct {
	at   time.Time
	name string
	fn   func(ctx context.Context)
}

type jobHeap []*oneShotJob

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h jobHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)        { *h = append(*h, x.(*oneShotJob)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return job
}

// OneShotQueue runs deferred one-shot jobs at their due time. A single
// background loop sleeps until the earliest pending job; scheduling an
// earlier job wakes it. Jobs run sequentially on the loop goroutine, and
// each job is expected to re-check its own preconditions when it fires,
// since the world may have moved on since it was queued.
type OneShotQueue struct {
	mu      sync.Mutex
	jobs    jobHeap
	wake    chan struct{}
	stop    chan struct{}
	stopped sync.Once
	logger  *logrus.Logger
}

func NewOneShotQueue() *OneShotQueue {
	q := &OneShotQueue{
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		logger: config.GetLogger(),
	}
	heap.Init(&q.jobs)
	go q.loop()
	return q
}

// Schedule queues fn to run at the given instant. A due time in the past
// fires on the next loop wakeup.
func (q *OneShotQueue) Schedule(at time.Time, name string, fn func(ctx context.Context)) {
	q.mu.Lock()
	heap.Push(&q.jobs, &oneShotJob{at: at, name: name, fn: fn})
	q.mu.Unlock()

	q.logger.WithFields(logrus.Fields{
		"module": "scheduler",
		"job":    name,
		"at":     at,
	}).Info("scheduled one-shot job")

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many jobs are queued.
func (q *OneShotQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Stop terminates the loop. Queued jobs that have not fired are dropped;
// they are recomputed from the store by the next daily reschedule pass.
func (q *OneShotQueue) Stop() {
	q.stopped.Do(func() { close(q.stop) })
}

func (q *OneShotQueue) loop() {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		q.mu.Lock()
		var wait time.Duration
		var next *oneShotJob
		if len(q.jobs) > 0 {
			next = q.jobs[0]
			wait = time.Until(next.at)
		}
		q.mu.Unlock()

		if next == nil {
			select {
			case <-q.wake:
				continue
			case <-q.stop:
				return
			}
		}

		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-q.wake:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				continue
			case <-q.stop:
				timer.Stop()
				return
			}
		}

		q.mu.Lock()
		job := heap.Pop(&q.jobs).(*oneShotJob)
		q.mu.Unlock()

		q.runJob(job)
	}
}

func (q *OneShotQueue) runJob(job *oneShotJob) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.WithFields(logrus.Fields{
				"module": "scheduler",
				"job":    job.name,
				"panic":  r,
			}).Error("one-shot job panicked")
		}
	}()

	q.logger.WithFields(logrus.Fields{
		"module": "scheduler",
		"job":    job.name,
	}).Info("running one-shot job")
	job.fn(context.Background())
}
