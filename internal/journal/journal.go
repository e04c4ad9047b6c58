package journal

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"main/internal/obs"
	"main/internal/schema"
)

const (
	defaultHost      = "localhost"
	defaultPort      = 5432
	defaultSSLMode   = "disable"
	defaultQueueSize = 4096
	defaultBatchSize = 128
	defaultFlushMS   = 500
)

// Config controls the trade and position journal.
type Config struct {
	Enabled    bool              `json:"enabled"`
	Host       string            `json:"host"`
	Port       int               `json:"port"`
	User       string            `json:"user"`
	Password   string            `json:"password"`
	Database   string            `json:"database"`
	SSLMode    string            `json:"sslMode"`
	Params     map[string]string `json:"params"`
	ConnString string            `json:"connString"`

	QueueSize  int `json:"queueSize"`
	BatchSize  int `json:"batchSize"`
	FlushMilli int `json:"flushMilli"`
}

// TradeRecord is one settled fill.
type TradeRecord struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement"`
	Ts               string
	Symbol           string `gorm:"index"`
	Side             string
	Size             float64
	Price            float64
	Account          string
	OrderID          string
	TradeID          string `gorm:"index"`
	Opened           float64
	Closed           float64
	OpenedCommission float64
	ClosedCommission float64
	CreatedAt        time.Time
}

// PositionRecord is one published position state.
type PositionRecord struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Symbol      string `gorm:"index"`
	Size        float64
	Price       float64
	OpenResult  float64
	CloseResult float64
	CreatedAt   time.Time
}

// Journal persists trades and positions off the hot path. Records pass
// through a bounded queue; a saturated queue drops and counts.
type Journal struct {
	db      *gorm.DB
	queue   chan any
	batch   int
	flush   time.Duration
	metrics *obs.Metrics
	done    chan struct{}
}

// Open connects to the database and prepares the tables. A disabled
// config returns a nil journal, safe for every method.
func Open(cfg Config, metrics *obs.Metrics) (*Journal, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open journal database")
	}
	if err := db.AutoMigrate(&TradeRecord{}, &PositionRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal tables")
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	flushMilli := cfg.FlushMilli
	if flushMilli <= 0 {
		flushMilli = defaultFlushMS
	}

	return &Journal{
		db:      db,
		queue:   make(chan any, queueSize),
		batch:   batch,
		flush:   time.Duration(flushMilli) * time.Millisecond,
		metrics: metrics,
		done:    make(chan struct{}),
	}, nil
}

// RecordTrade enqueues a trade without blocking.
func (j *Journal) RecordTrade(evt schema.TradeExecutedEvent) {
	if j == nil {
		return
	}
	j.enqueue(TradeRecord{
		Ts:               evt.Ts,
		Symbol:           evt.Symbol,
		Side:             string(evt.Side),
		Size:             evt.Size,
		Price:            evt.Price,
		Account:          evt.Account,
		OrderID:          evt.OrderID,
		TradeID:          evt.TradeID,
		Opened:           evt.Opened,
		Closed:           evt.Closed,
		OpenedCommission: evt.OpenedCommission,
		ClosedCommission: evt.ClosedCommission,
	})
}

// RecordPosition enqueues a position state without blocking.
func (j *Journal) RecordPosition(evt schema.PositionUpdatedEvent) {
	if j == nil {
		return
	}
	j.enqueue(PositionRecord{
		Symbol:      evt.Symbol,
		Size:        evt.Size,
		Price:       evt.Price,
		OpenResult:  evt.OpenResult,
		CloseResult: evt.CloseResult,
	})
}

func (j *Journal) enqueue(record any) {
	select {
	case j.queue <- record:
	default:
		j.metrics.IncQueueDrop()
		logs.Warnf("journal queue full, drop record: %T", record)
	}
}

// Run batches queued records into the database until the context ends.
func (j *Journal) Run(ctx context.Context) {
	if j == nil {
		return
	}
	defer close(j.done)

	trades := make([]TradeRecord, 0, j.batch)
	positions := make([]PositionRecord, 0, j.batch)
	ticker := time.NewTicker(j.flush)
	defer ticker.Stop()

	flush := func() {
		if len(trades) > 0 {
			if err := j.db.Create(&trades).Error; err != nil {
				logs.Errorf("insert trade records, count: %d, err: %+v", len(trades), err)
			}
			trades = trades[:0]
		}
		if len(positions) > 0 {
			if err := j.db.Create(&positions).Error; err != nil {
				logs.Errorf("insert position records, count: %d, err: %+v", len(positions), err)
			}
			positions = positions[:0]
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-ticker.C:
			flush()
		case record := <-j.queue:
			switch r := record.(type) {
			case TradeRecord:
				trades = append(trades, r)
			case PositionRecord:
				positions = append(positions, r)
			}
			if len(trades)+len(positions) >= j.batch {
				flush()
			}
		}
	}
}

// Wait blocks until the worker has flushed and returned.
func (j *Journal) Wait() {
	if j == nil {
		return
	}
	<-j.done
}

// Close releases the connection pool.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (cfg Config) dsn() string {
	if cfg.ConnString != "" {
		return cfg.ConnString
	}

	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	for key, value := range cfg.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	return u.String()
}
