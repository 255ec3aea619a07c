package storage

import (
	"context"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

// Change types.
const (
	ChangeUpserted = "upserted"
	ChangeDeleted  = "deleted"
)

// ChangeEvent is the queue message sent for every mutation.
type ChangeEvent struct {
	EntityType string `json:"entityType"`
	Type       string `json:"type"`
	EntityID   string `json:"entityId"`
	Modified   int64  `json:"modified,omitempty"`
}

type queueClient interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
}

// NewQueueClient opens the change queue with the SDK retry policy.
func NewQueueClient(connStr, queue string) (*azqueue.QueueClient, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   retryStatusCodes,
			},
		},
	}
	return azqueue.NewQueueClientFromConnectionString(connStr, queue, &opts)
}

// NotifierConfig sizes the send pool.
type NotifierConfig struct {
	Workers        int
	Buffer         int
	SendTimeout    time.Duration
	HandoffTimeout time.Duration
}

// DefaultNotifierConfig returns the pool sizing used when none is configured.
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		Workers:        4,
		Buffer:         256,
		SendTimeout:    30 * time.Second,
		HandoffTimeout: 15 * time.Millisecond,
	}
}

// Notifier sends change events on a bounded worker pool. When the buffer is
// full after the hand-off timeout the event is sent inline by the caller.
type Notifier struct {
	queue queueClient
	cfg   NotifierConfig
	log   *log.Logger

	mu     sync.RWMutex
	jobs   chan ChangeEvent
	wg     sync.WaitGroup
	closed bool
}

func NewNotifier(queue queueClient, cfg NotifierConfig, logger *log.Logger) *Notifier {
	if queue == nil {
		panic("storage.NewNotifier: queue is nil")
	}
	if logger == nil {
		panic("Logger is not initialized")
	}
	def := DefaultNotifierConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Buffer < 0 {
		cfg.Buffer = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	n := &Notifier{queue: queue, cfg: cfg, log: logger, jobs: make(chan ChangeEvent, cfg.Buffer)}
	for i := 0; i < cfg.Workers; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}
	logger.Infof("change notifier started, workers: %d, buffer: %d, timeout: %v, handoff: %v",
		cfg.Workers, cfg.Buffer, cfg.SendTimeout, cfg.HandoffTimeout)
	return n
}

func (n *Notifier) worker(id int) {
	defer n.wg.Done()
	for ev := range n.jobs {
		if err := n.send(ev); err != nil {
			n.log.Errorf("change notify failed, err: %v, entity: %s/%s, worker: %d", err, ev.EntityType, ev.EntityID, id)
		}
	}
}

func (n *Notifier) send(ev ChangeEvent) error {
	data, err := sonic.MarshalString(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.SendTimeout)
	defer cancel()
	_, err = n.queue.EnqueueMessage(ctx, data, nil)
	return err
}

// Notify queues ev for sending.
func (n *Notifier) Notify(ev ChangeEvent) {
	if n.tryHandoff(ev) {
		return
	}
	if err := n.send(ev); err != nil {
		n.log.Errorf("change notify failed, err: %v, entity: %s/%s, inline", err, ev.EntityType, ev.EntityID)
	}
}

func (n *Notifier) tryHandoff(ev ChangeEvent) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return false
	}
	select {
	case n.jobs <- ev:
		return true
	default:
	}
	if n.cfg.HandoffTimeout <= 0 {
		return false
	}
	timer := time.NewTimer(n.cfg.HandoffTimeout)
	defer timer.Stop()
	select {
	case n.jobs <- ev:
		return true
	case <-timer.C:
		return false
	}
}

// Close drains pending events and stops the workers.
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.jobs)
	}
	n.mu.Unlock()
	n.wg.Wait()
}

// Notifying wraps a record store and emits a ChangeEvent after every
// successful task, category or tag write.
type Notifying struct {
	service.Store
	notifier *Notifier
}

func NewNotifying(base service.Store, notifier *Notifier) *Notifying {
	if base == nil || notifier == nil {
		panic("storage.NewNotifying: nil argument")
	}
	return &Notifying{Store: base, notifier: notifier}
}

func (s *Notifying) PutTasks(ctx context.Context, tasks ...domain.Task) error {
	if err := s.Store.PutTasks(ctx, tasks...); err != nil {
		return err
	}
	for _, t := range tasks {
		typ := ChangeUpserted
		if t.Deleted {
			typ = ChangeDeleted
		}
		s.notifier.Notify(ChangeEvent{EntityType: TaskPartition, Type: typ, EntityID: t.ID, Modified: t.Modified})
	}
	return nil
}

func (s *Notifying) RemoveTask(ctx context.Context, id string) error {
	return s.afterWrite(s.Store.RemoveTask(ctx, id), TaskPartition, ChangeDeleted, id)
}

func (s *Notifying) PutCategory(ctx context.Context, c domain.Category) error {
	return s.afterWrite(s.Store.PutCategory(ctx, c), CategoryPartition, ChangeUpserted, c.ID)
}

func (s *Notifying) RemoveCategory(ctx context.Context, id string) error {
	return s.afterWrite(s.Store.RemoveCategory(ctx, id), CategoryPartition, ChangeDeleted, id)
}

func (s *Notifying) PutTag(ctx context.Context, t domain.Tag) error {
	return s.afterWrite(s.Store.PutTag(ctx, t), TagPartition, ChangeUpserted, t.ID)
}

func (s *Notifying) afterWrite(err error, entity, typ, id string) error {
	if err != nil {
		return err
	}
	s.notifier.Notify(ChangeEvent{EntityType: entity, Type: typ, EntityID: id, Modified: time.Now().UnixMilli()})
	return nil
}
