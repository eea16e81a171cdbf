package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"

	"funnelforge/pkg/errors"
	"funnelforge/pkg/models"
)

// warehouseBatchSize rows are buffered per dataset before an INSERT is
// issued.
const warehouseBatchSize = 500

// Warehouse loads datasets into Snowflake, one table per dataset with
// a single VARIANT payload column. Rows are buffered and inserted in
// batches; Close flushes whatever remains.
type Warehouse struct {
	db      *sql.DB
	cfg     models.Warehouse
	timeout time.Duration

	pending map[string][]string
	tables  map[string]bool
}

// NewWarehouse opens a connection to Snowflake and verifies it.
func NewWarehouse(cfg models.Warehouse) (*Warehouse, error) {
	w := &Warehouse{
		cfg:     cfg,
		timeout: 60 * time.Second,
		pending: make(map[string][]string),
		tables:  make(map[string]bool),
	}

	err := w.connect()
	if err != nil {
		return nil, err
	}
	return w, nil
}

// newWarehouseWithDB wires an existing connection, for tests.
func newWarehouseWithDB(db *sql.DB, cfg models.Warehouse) *Warehouse {
	return &Warehouse{
		db:      db,
		cfg:     cfg,
		timeout: 60 * time.Second,
		pending: make(map[string][]string),
		tables:  make(map[string]bool),
	}
}

func (w *Warehouse) connect() error {
	cfg := w.cfg
	return errors.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s&role=%s",
			cfg.Username,
			cfg.Password,
			cfg.Account,
			cfg.Database,
			cfg.Schema,
			cfg.Warehouse,
			cfg.Role,
		)

		db, err := sql.Open("snowflake", dsn)
		if err != nil {
			return errors.ConnectionError("failed to open warehouse connection", err).
				WithContext("account", cfg.Account).
				WithContext("warehouse", cfg.Warehouse)
		}

		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(10 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()

		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			if strings.Contains(err.Error(), "authentication") {
				return errors.New(errors.ErrCodeAuthenticationFailed, "warehouse authentication failed").
					WithContext("user", cfg.Username).
					WithSuggestions(
						"Verify your username and password",
						"Check if your account is locked",
					)
			}
			return errors.ConnectionError("failed to connect to warehouse", err).
				WithContext("account", cfg.Account).
				AsRecoverable()
		}

		w.db = db
		return nil
	})
}

// Write buffers one record, flushing the dataset's batch when full.
func (w *Warehouse) Write(dataset string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.SinkError("failed to marshal record", dataset, err)
	}

	w.pending[dataset] = append(w.pending[dataset], string(data))
	if len(w.pending[dataset]) >= warehouseBatchSize {
		return w.flush(dataset)
	}
	return nil
}

// Close flushes all pending batches and closes the connection.
func (w *Warehouse) Close() error {
	var firstErr error
	for dataset := range w.pending {
		if err := w.flush(dataset); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := w.db.Close(); err != nil && firstErr == nil {
		firstErr = errors.SinkError("failed to close warehouse connection", "", err)
	}
	return firstErr
}

func (w *Warehouse) flush(dataset string) error {
	rows := w.pending[dataset]
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.ensureTable(ctx, dataset); err != nil {
		return err
	}

	args := make([]any, len(rows))
	for i, row := range rows {
		args[i] = row
	}

	// PARSE_JSON is not allowed directly in VALUES, hence the SELECT
	// form.
	stmt := fmt.Sprintf("INSERT INTO %s (payload) SELECT PARSE_JSON(column1) FROM VALUES %s",
		w.tableName(dataset), strings.Join(repeat("(?)", len(rows)), ", "))

	if _, err := w.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.SinkError("failed to insert batch", dataset, err).
			WithContext("rows", len(rows)).
			AsRecoverable()
	}

	w.pending[dataset] = w.pending[dataset][:0]
	return nil
}

func (w *Warehouse) ensureTable(ctx context.Context, dataset string) error {
	if w.tables[dataset] {
		return nil
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (payload VARIANT)", w.tableName(dataset))
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return errors.SinkError("failed to create dataset table", dataset, err)
	}
	w.tables[dataset] = true
	return nil
}

func (w *Warehouse) tableName(dataset string) string {
	return fmt.Sprintf("%s.%s.%s", w.cfg.Database, w.cfg.Schema, strings.ToUpper(dataset))
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
