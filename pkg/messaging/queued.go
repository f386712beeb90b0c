package messaging

import (
	"context"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/pkg/jobs"
)

const defaultLaneBuffer = 256

// Delivery is one outbound message waiting to be sent.
type Delivery struct {
	To   string
	Body string
}

// QueuedMessenger hands messages to worker queues that retry failed sends,
// so the webhook can acknowledge before the transport call finishes. Each
// recipient is pinned to one single-worker lane, which keeps a user's
// replies in the order they were produced. A retried reply may still be
// overtaken by a later one for the same user.
type QueuedMessenger struct {
	lanes  []*jobs.Queue[Delivery]
	logger *zap.Logger
}

// NewQueuedMessenger wraps next with asynchronous delivery. cfg.Workers is
// the number of lanes and cfg.BufferSize the capacity of each lane. The
// caller owns Start and Stop.
func NewQueuedMessenger(next Messenger, cfg jobs.QueueConfig) *QueuedMessenger {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lanes := cfg.Workers
	if lanes <= 0 {
		lanes = 1
	}
	laneCfg := cfg
	laneCfg.Workers = 1
	if laneCfg.BufferSize <= 0 {
		laneCfg.BufferSize = defaultLaneBuffer
	}

	handler := func(ctx context.Context, job jobs.Job[Delivery]) error {
		return next.Send(ctx, job.Payload.To, job.Payload.Body)
	}
	m := &QueuedMessenger{logger: logger}
	for i := 0; i < lanes; i++ {
		m.lanes = append(m.lanes, jobs.NewQueue[Delivery](fmt.Sprintf("outbound-messages-%d", i), handler, laneCfg))
	}
	return m
}

// Start launches every lane.
func (m *QueuedMessenger) Start(ctx context.Context) {
	for _, lane := range m.lanes {
		lane.Start(ctx)
	}
}

// Stop drains every lane until ctx expires.
func (m *QueuedMessenger) Stop(ctx context.Context) {
	for _, lane := range m.lanes {
		lane.Stop(ctx)
	}
}

// Pending reports the number of buffered deliveries across lanes.
func (m *QueuedMessenger) Pending() int {
	n := 0
	for _, lane := range m.lanes {
		n += lane.Pending()
	}
	return n
}

// Send enqueues the delivery on the recipient's lane.
func (m *QueuedMessenger) Send(ctx context.Context, to, body string) error {
	lane := m.lane(to)
	id, err := m.lanes[lane].Enqueue(Delivery{To: to, Body: body})
	if err != nil {
		return fmt.Errorf("enqueue delivery to %s: %w", to, err)
	}
	m.logger.Debug("delivery queued", zap.String("job_id", id), zap.String("to", to), zap.Int("lane", lane))
	return nil
}

func (m *QueuedMessenger) lane(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(m.lanes)))
}
