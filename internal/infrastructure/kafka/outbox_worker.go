package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/scrape-ingest/internal/usecase"
	"github.com/DRSN-tech/scrape-ingest/pkg/e"
	"github.com/DRSN-tech/scrape-ingest/pkg/jitter"
	"github.com/DRSN-tech/scrape-ingest/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	notifyChannel = "outbox_pending"
	waitTimeout   = 30 * time.Second
	maxReconnect  = 30 * time.Second
)

// OutboxWorker публикует ожидающие события outbox. Таблица вычитывается при старте,
// по каждому NOTIFY и не реже раза в waitTimeout.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	batchSize int
	dbConnStr string
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	batchSize int,
	dbConnStr string,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		batchSize: batchSize,
		dbConnStr: dbConnStr,
		stop:      make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-w.stop:
		}
		cancel()
	}()

	go func() {
		defer w.wg.Done()
		w.logger.Infof("Draining pending outbox events on startup...")
		w.drain(ctx)
		w.listen(ctx)
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) listen(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = c.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
			_ = c.Close(context.WithoutCancel(ctx))
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to '%s' channel", notifyChannel)
		return nil
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.WithoutCancel(ctx))
		}
	}()

	for attempt := 0; ctx.Err() == nil; {
		if conn == nil {
			if err := connect(); err != nil {
				w.logger.Warnf("outbox listener: %v", err)
				if jitter.Sleep(ctx, jitter.ExponentialBackoff(time.Second, maxReconnect, attempt, 0), jitter.DefaultJitter) != nil {
					return
				}
				attempt++
				continue
			}
			attempt = 0
			// уведомления о событиях, записанных без соединения, потеряны
			w.drain(ctx)
		}

		waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, context.DeadlineExceeded):
			w.drain(ctx)
		case err != nil:
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(context.WithoutCancel(ctx))
			conn = nil
		case notif != nil && notif.Channel == notifyChannel:
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch публикует одну захваченную пачку и сообщает, была ли она
// полной, то есть могут ждать ещё события.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	failed := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			w.logger.Warnf("outbox event %s for %s: %v", event.EventID, event.Key, err)
			if isRetryableError(err) || ctx.Err() != nil {
				if err := w.repo.MarkAsPending(context.WithoutCancel(ctx), event.ID); err != nil {
					w.logger.Warnf("mark pending failed: %v", err)
				}
			}
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	// полностью упавшую пачку сразу захватили бы снова
	if failed == len(events) {
		return false, nil
	}

	return len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq(event.Key.String(), event.Payload)
	if err := w.producer.WriteRawMessage(ctx, req); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
		"context deadline exceeded",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
