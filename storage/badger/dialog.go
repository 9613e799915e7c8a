package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
)

// DialogRepository implements storage.DialogRepository for BadgerDB.
type DialogRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DialogRepository = (*DialogRepository)(nil)

// NewDialogRepository creates a new DialogRepository.
func NewDialogRepository(backend *Backend) (*DialogRepository, error) {
	idSeq, err := backend.GetSequence(dialogRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &DialogRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DialogRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DialogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDialogRecords adds one or more dialog records to storage.
func (r *DialogRepository) AddDialogRecords(ctx context.Context, records ...*core.DialogRecord) ([]*core.DialogRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Generate IDs and set timestamps
		for _, record := range records {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)

			record.InsertedAt = time.Now().UTC()
			record.UpdatedAt = record.InsertedAt

			// Store primary record
			key := makeDialogRecordKey(record.Id)
			value := storage.MarshalDialogRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update per-chat time index
			chatKey := makeDialogChatKey(record.ChatID, record.Timestamp, record.Id)
			if err := tx.Set(chatKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteDialogRecords removes dialog records by their IDs.
func (r *DialogRepository) DeleteDialogRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDialogRecordKey(id)

			// Read record to get chat and timestamp for index cleanup
			record, err := readDialogRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			// Delete from per-chat time index
			chatKey := makeDialogChatKey(record.ChatID, record.Timestamp, record.Id)
			if err := tx.Delete(chatKey); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDialogRecord retrieves a single dialog record by ID.
func (r *DialogRepository) GetDialogRecord(ctx context.Context, id core.ID) (*core.DialogRecord, error) {
	var result *core.DialogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDialogRecordKey(id)
		var err error
		result, err = readDialogRecord(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDialogRecordsByDateRange retrieves a chat's dialog records within a time range.
// The range covers start inclusive to end exclusive.
func (r *DialogRepository) GetDialogRecordsByDateRange(ctx context.Context, chatID int64, start, end time.Time) ([]*core.DialogRecord, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.DialogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDialogChatKey(chatID, start)
		endKey := makePartialDialogChatKey(chatID, end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			recordKey := makeDialogRecordKey(recordID)
			record, err := readDialogRecord(tx, recordKey)
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentDialogRecords retrieves the N most recent dialog records for a chat,
// ordered by timestamp descending.
func (r *DialogRepository) GetRecentDialogRecords(ctx context.Context, chatID int64, limit int) ([]*core.DialogRecord, error) {
	var results []*core.DialogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent records first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key for this chat
		startKey := makePartialDialogChatKey(chatID, time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		// Stay within this chat's slice of the index
		prefix := makeDialogChatScanPrefix(chatID)

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the ID from the index
			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			recordKey := makeDialogRecordKey(recordID)
			record, err := readDialogRecord(tx, recordKey)
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// readDialogRecord reads a dialog record from the transaction.
func readDialogRecord(tx *badger.Txn, key []byte) (*core.DialogRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.DialogRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalDialogRecord(val)
		return unmarshalErr
	})
	return record, err
}
