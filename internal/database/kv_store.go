package database

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ErrQuotaExceeded is logged when a serialized value is larger than the
// store's quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueStore keeps JSON values under string keys inside one namespace.
//
// None of its methods return errors: failures are logged and reported as a
// false result (or a default value), the way browser storage helpers behave.
type KeyValueStore struct {
	db        *sqlx.DB
	namespace string
	quota     int
	log       logrus.FieldLogger
}

// StoreOption configures a KeyValueStore
type StoreOption func(*KeyValueStore)

// WithQuota limits the size in bytes of a single serialized value.
// Zero disables the limit.
func WithQuota(bytes int) StoreOption {
	return func(s *KeyValueStore) {
		s.quota = bytes
	}
}

// WithLogger sets the logger used for storage diagnostics
func WithLogger(log logrus.FieldLogger) StoreOption {
	return func(s *KeyValueStore) {
		s.log = log
	}
}

// NewKeyValueStore creates a store over the kv_store table of db
func NewKeyValueStore(db *sqlx.DB, namespace string, opts ...StoreOption) *KeyValueStore {
	s := &KeyValueStore{
		db:        db,
		namespace: namespace,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the namespace the store operates in
func (s *KeyValueStore) Namespace() string {
	return s.namespace
}

// Get decodes the value stored at key into dst. It reports false when the key
// is absent or the stored value can't be read or decoded.
func (s *KeyValueStore) Get(key string, dst interface{}) bool {
	found, err := s.load(key, dst)
	return found && err == nil
}

// GetOr returns the value stored at key, or def when the key is absent or
// holds data that can't be decoded into T
func GetOr[T any](s *KeyValueStore, key string, def T) T {
	var v T
	if found, err := s.load(key, &v); !found || err != nil {
		return def
	}
	return v
}

// appendRecord adds record to the JSON array stored at key. It refuses to
// write when the stored array exists but can't be read, so unreadable data is
// never replaced by a one-element array.
func appendRecord[T any](s *KeyValueStore, key string, record T) bool {
	var records []T
	if _, err := s.load(key, &records); err != nil {
		return false
	}
	return s.Set(key, append(records, record))
}

// Set serializes value and stores it at key
func (s *KeyValueStore) Set(key string, value interface{}) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.entry(key).WithError(err).Error("Error encoding value for storage")
		return false
	}
	if s.quota > 0 && len(data) > s.quota {
		s.entry(key).WithError(ErrQuotaExceeded).
			WithField("size", len(data)).
			WithField("quota", s.quota).
			Error("Error writing to storage")
		return false
	}

	query := s.db.Rebind(`
		INSERT INTO kv_store (namespace, item_key, item_value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (namespace, item_key) DO UPDATE SET
			item_value = EXCLUDED.item_value,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := s.db.Exec(query, s.namespace, key, string(data)); err != nil {
		s.entry(key).WithError(err).Error("Error writing to storage")
		return false
	}
	return true
}

// Remove deletes key. Removing an absent key succeeds.
func (s *KeyValueStore) Remove(key string) bool {
	query := s.db.Rebind("DELETE FROM kv_store WHERE namespace = ? AND item_key = ?")
	if _, err := s.db.Exec(query, s.namespace, key); err != nil {
		s.entry(key).WithError(err).Error("Error removing from storage")
		return false
	}
	return true
}

// Clear deletes every key in the store's namespace
func (s *KeyValueStore) Clear() bool {
	query := s.db.Rebind("DELETE FROM kv_store WHERE namespace = ?")
	if _, err := s.db.Exec(query, s.namespace); err != nil {
		s.log.WithField("namespace", s.namespace).WithError(err).Error("Error clearing storage")
		return false
	}
	return true
}

// load decodes the value at key into dst. found is false for an absent key.
// Read and decode failures are logged and returned, so read-modify-write
// callers can tell an unreadable value from a missing one.
func (s *KeyValueStore) load(key string, dst interface{}) (found bool, err error) {
	var raw string
	query := s.db.Rebind("SELECT item_value FROM kv_store WHERE namespace = ? AND item_key = ?")
	err = s.db.Get(&raw, query, s.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		s.entry(key).WithError(err).Error("Error reading from storage")
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.entry(key).WithError(err).Error("Error decoding stored value")
		return true, err
	}
	return true, nil
}

func (s *KeyValueStore) entry(key string) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"namespace": s.namespace,
		"key":       key,
	})
}
