package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SelectionStore persists selected-id sets under named slots. It implements
// the selection.Persister port; callers treat every failure as "no persisted
// selection".
type SelectionStore struct {
	db *sql.DB
}

// NewSelectionStore creates a selection store from a base store
func NewSelectionStore(store *Store) *SelectionStore {
	if store == nil {
		return nil
	}
	return &SelectionStore{db: store.DB()}
}

// SaveSelection upserts the id set for slot, serialized as a JSON array
func (ss *SelectionStore) SaveSelection(ctx context.Context, slot string, ids []string) error {
	if ss == nil || ss.db == nil {
		return fmt.Errorf("selection store not initialized")
	}
	if slot == "" {
		return fmt.Errorf("empty selection slot")
	}
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	_, err = ss.db.ExecContext(ctx, `INSERT INTO selection_state(slot, ids, updated_at)
VALUES(?,?,?)
ON CONFLICT(slot) DO UPDATE SET ids=excluded.ids, updated_at=excluded.updated_at;
`, slot, string(data), time.Now().Unix())
	return err
}

// LoadSelection returns the persisted id set for slot if present. A row that
// fails to decode is reported as an error; the caller starts empty.
func (ss *SelectionStore) LoadSelection(ctx context.Context, slot string) ([]string, bool, error) {
	if ss == nil || ss.db == nil {
		return nil, false, fmt.Errorf("selection store not initialized")
	}
	var raw string
	err := ss.db.QueryRowContext(ctx, `SELECT ids FROM selection_state WHERE slot=?`, slot).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, fmt.Errorf("decode selection %q: %w", slot, err)
	}
	return ids, true, nil
}

// ClearSelection removes the persisted id set for slot
func (ss *SelectionStore) ClearSelection(ctx context.Context, slot string) error {
	if ss == nil || ss.db == nil {
		return fmt.Errorf("selection store not initialized")
	}
	_, err := ss.db.ExecContext(ctx, `DELETE FROM selection_state WHERE slot=?`, slot)
	return err
}
