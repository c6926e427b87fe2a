package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const batchSize = 50

var fallback = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// LogSink persists a batch of system log rows.
type LogSink interface {
	WriteLogs(ctx context.Context, batch []models.SystemLog) error
}

type gormSink struct {
	db *gorm.DB
}

// NewGormSink writes batches to the system_logs table.
func NewGormSink(db *gorm.DB) LogSink {
	return gormSink{db: db}
}

func (s gormSink) WriteLogs(ctx context.Context, batch []models.SystemLog) error {
	return s.db.WithContext(ctx).CreateInBatches(batch, batchSize).Error
}

// PGHandler is an slog.Handler that batches ERROR+ records into a LogSink.
// Records are flushed every interval, when the buffer fills, and on Stop.
type PGHandler struct {
	core  *pgCore
	attrs []slog.Attr
	group string
}

type pgCore struct {
	sink   LogSink
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewPGHandler(sink LogSink, interval time.Duration) *PGHandler {
	c := &pgCore{
		sink:   sink,
		buffer: make([]models.SystemLog, 0, batchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.flushLoop()
	return &PGHandler{core: c}
}

func (c *pgCore) flushLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ticker.C:
			c.flush()
		case <-c.done:
			c.flush()
			return
		}
	}
}

func (c *pgCore) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]models.SystemLog, 0, batchSize)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.sink.WriteLogs(ctx, batch); err != nil {
		// not via slog.Default, which would route the failure back into this handler
		fallback.Warn("failed to flush system logs", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and ends the background loop.
func (h *PGHandler) Stop() {
	h.core.ticker.Stop()
	close(h.core.done)
	h.core.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch v := a.Value.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(v))
			case int64:
				entry.LatencyMs = int(v)
			}
		default:
			key := a.Key
			if h.group != "" {
				key = h.group + "." + key
			}
			extra[key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	c := h.core
	c.mu.Lock()
	c.buffer = append(c.buffer, entry)
	needFlush := len(c.buffer) >= batchSize
	c.mu.Unlock()

	if needFlush {
		go c.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{core: h.core, attrs: merged, group: h.group}
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &PGHandler{core: h.core, attrs: h.attrs, group: group}
}
