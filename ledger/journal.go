package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vadiminshakov/gowal"
)

const (
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	journalKeyPrefix    = "op_"
)

// JournalEntry describes one applied operation.
type JournalEntry struct {
	OpID    string   `json:"op_id"`
	Name    string   `json:"name"`
	Records []string `json:"records"`
	AtUnix  int64    `json:"at_unix"`
}

// Journal is an append-only log of applied operations, backed by a
// write-ahead log on disk. It is an audit trail, not a source of truth:
// record state lives in the Ledger.
type Journal struct {
	mu     sync.Mutex
	wal    *gowal.Wal
	closed bool
}

// OpenJournal initializes the operation journal under dir.
func OpenJournal(dir string) (*Journal, error) {
	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "oplog_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}
	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, fmt.Errorf("ledger: open journal: %w", err)
	}
	return &Journal{wal: wal}, nil
}

// Append records one applied operation with the record IDs it touched.
func (j *Journal) Append(name string, records ...ID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}

	entry := JournalEntry{
		OpID:   uuid.NewString(),
		Name:   name,
		AtUnix: time.Now().Unix(),
	}
	for _, id := range records {
		entry.Records = append(entry.Records, id.String())
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("ledger: marshal journal entry: %w", err)
	}

	next := j.wal.CurrentIndex() + 1
	if err := j.wal.Write(next, journalKeyPrefix+name, payload); err != nil {
		return fmt.Errorf("ledger: append journal entry: %w", err)
	}
	return nil
}

// Entries replays every journaled operation in append order.
func (j *Journal) Entries() ([]JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrJournalClosed
	}

	var entries []JournalEntry
	for msg := range j.wal.Iterator() {
		var entry JournalEntry
		if err := json.Unmarshal(msg.Value, &entry); err != nil {
			return nil, fmt.Errorf("ledger: decode journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close closes the underlying write-ahead log.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.wal.Close()
}
