package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/arcs-core/arcs/pkg/vv"

	_ "modernc.org/sqlite"
)

// SQLiteDriver persists each key's latest blob in a SQLite table running
// in WAL mode, so concurrent readers never block a writer. It polls its
// own table for rows written by other processes sharing the same
// database file and fans them out to registered receivers — the local
// analogue of a networked driver's "remote update arrived" callback.
type SQLiteDriver struct {
	db *sql.DB

	mu        sync.Mutex
	receivers map[string]func(data []byte, version vv.VersionVector)
	seenRev   map[string]int64

	pollStop chan struct{}
	pollDone chan struct{}
}

// NewSQLiteDriver opens (or creates) the SQLite database at path and
// starts polling for external writes every pollInterval.
func NewSQLiteDriver(path string, pollInterval time.Duration) (*SQLiteDriver, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	d := &SQLiteDriver{
		db:        db,
		receivers: make(map[string]func(data []byte, version vv.VersionVector)),
		seenRev:   make(map[string]int64),
		pollStop:  make(chan struct{}),
		pollDone:  make(chan struct{}),
	}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if pollInterval > 0 {
		go d.pollLoop(pollInterval)
	} else {
		close(d.pollDone)
	}
	return d, nil
}

func (d *SQLiteDriver) migrate() error {
	_, err := d.db.Exec(`
	CREATE TABLE IF NOT EXISTS blobs (
		key       TEXT PRIMARY KEY,
		data      BLOB NOT NULL,
		version   TEXT NOT NULL,
		revision  INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);
	`)
	return err
}

// RegisterReceiver implements Driver.
func (d *SQLiteDriver) RegisterReceiver(key string, callback func(data []byte, version vv.VersionVector)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receivers[key] = callback
}

// Send implements Driver. Transient SQLite contention errors are retried
// with backoff via retryOp; if they're still unresolved after exhausting
// retries, Send reports the write as failed so the caller keeps it
// pending.
func (d *SQLiteDriver) Send(key string, data []byte, version vv.VersionVector) bool {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	encoded := encodeVersion(version)
	err := retryOnContention(func() error {
		_, err := d.db.Exec(
			`INSERT INTO blobs (key, data, version, revision, updated_at)
			 VALUES (?, ?, ?, 1, ?)
			 ON CONFLICT(key) DO UPDATE SET
			   data = excluded.data, version = excluded.version,
			   revision = blobs.revision + 1, updated_at = excluded.updated_at`,
			key, data, encoded, now,
		)
		return err
	})
	if err != nil {
		return false
	}
	d.mu.Lock()
	if rev, err := d.currentRevision(key); err == nil {
		d.seenRev[key] = rev
	}
	d.mu.Unlock()
	return true
}

// Close implements Driver.
func (d *SQLiteDriver) Close() error {
	close(d.pollStop)
	<-d.pollDone
	return d.db.Close()
}

func (d *SQLiteDriver) pollLoop(interval time.Duration) {
	defer close(d.pollDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.pollStop:
			return
		case <-ticker.C:
			d.pollOnce()
		}
	}
}

func (d *SQLiteDriver) pollOnce() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.receivers))
	for k := range d.receivers {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	for _, key := range keys {
		var data []byte
		var encoded string
		var rev int64
		err := d.db.QueryRow(`SELECT data, version, revision FROM blobs WHERE key = ?`, key).
			Scan(&data, &encoded, &rev)
		if err != nil {
			continue
		}
		d.mu.Lock()
		last, seen := d.seenRev[key]
		cb := d.receivers[key]
		changed := !seen || rev != last
		if changed {
			d.seenRev[key] = rev
		}
		d.mu.Unlock()
		if changed && cb != nil {
			cb(data, decodeVersion(encoded))
		}
	}
}

func (d *SQLiteDriver) currentRevision(key string) (int64, error) {
	var rev int64
	err := d.db.QueryRow(`SELECT revision FROM blobs WHERE key = ?`, key).Scan(&rev)
	return rev, err
}

// retryOnContention wraps retryOp with the default config. All
// SQLiteDriver write operations go through this to absorb transient
// SQLite contention errors.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}
