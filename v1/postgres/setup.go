package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mypictures/photoindex/v1/logger"
)

// Postgres wraps a gorm connection pool that can be swapped out by the
// reconnect loop. All readers go through DB(), which loads the current pool.
type Postgres struct {
	cfg             Config
	log             logger.Logger
	client          atomic.Pointer[gorm.DB]
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeShutdownOnce sync.Once
}

// NewPostgres opens the pool described by cfg. A failure to connect is
// classified through TranslateError so callers can test for ErrConnectivity.
func NewPostgres(cfg Config, log logger.Logger) (*Postgres, error) {
	conn, err := connectToPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to postgres: %w", err)
	}

	pg := &Postgres{
		cfg:             cfg,
		log:             log,
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	pg.client.Store(conn)

	log.Info("connected to postgres", nil, map[string]interface{}{
		"host":   cfg.Connection.Host,
		"port":   cfg.Connection.Port,
		"dbname": cfg.Connection.DbName,
	})
	return pg, nil
}

func connectToPostgres(cfg Config) (*gorm.DB, error) {
	database, err := gorm.Open(
		postgres.Open(cfg.DSN()),
		&gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
	if err != nil {
		return nil, TranslateError(fmt.Errorf("failed to open postgres: %w", err))
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get postgres database instance: %w", err)
	}

	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 50
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 25
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return database, nil
}

// DB returns the current pool.
func (p *Postgres) DB() *gorm.DB {
	return p.client.Load()
}

// Ping checks the server is reachable within the context deadline.
func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return TranslateError(fmt.Errorf("database ping failed: %w", err))
	}
	return nil
}

// RetryConnection waits for health check failures reported by
// MonitorConnection and reconnects until it succeeds or shutdown begins.
func (p *Postgres) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case err, ok := <-p.retryChanSignal:
			if !ok {
				return
			}
			p.log.Warn("postgres health check failed, reconnecting", err)
			for {
				select {
				case <-p.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
				}

				newConn, err := connectToPostgres(p.cfg)
				if err != nil {
					p.log.Error("postgres reconnection failed", err)
					time.Sleep(time.Second)
					continue
				}

				old := p.client.Swap(newConn)
				if old != nil {
					if sqlDB, err := old.DB(); err == nil {
						_ = sqlDB.Close()
					}
				}
				p.log.Info("reconnected to postgres", nil)
				continue outerLoop
			}
		}
	}
}

// MonitorConnection pings the server periodically and signals
// RetryConnection when a ping fails.
func (p *Postgres) MonitorConnection(ctx context.Context) {
	interval := p.cfg.ConnectionDetails.HealthCheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.healthCheck(); err != nil {
				select {
				case p.retryChanSignal <- err:
				default:
				}
			}
		}
	}
}

func (p *Postgres) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Ping(ctx)
}

// Close stops the background loops and closes the pool.
func (p *Postgres) Close() error {
	p.closeShutdownOnce.Do(func() {
		close(p.shutdownSignal)
	})

	sqlDB, err := p.DB().DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}
