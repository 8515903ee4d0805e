package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// KeyValueStorage implements model.KeyValueStore using GORM.
// The permission window and alert bookkeeping live here.
type KeyValueStorage struct {
	db *gorm.DB
}

// KeyValue provides an accessor for scoped key-value storage.
func (s *Storage) KeyValue() *KeyValueStorage {
	return &KeyValueStorage{db: s.db}
}

func (s *KeyValueStorage) where(scope, key string) *gorm.DB {
	return s.db.Model(&model.KeyValue{}).Where(keyValueCond(scope, key))
}

// keyValueCond uses a map condition, a struct condition would drop the empty
// global scope
func keyValueCond(scope, key string) map[string]any {
	return map[string]any{
		"scope": scope,
		"key":   key,
	}
}

// Get returns the raw JSON value for a (scope, key); nil, nil if absent.
func (s *KeyValueStorage) Get(scope, key string) (datatypes.JSON, error) {
	var raw []byte
	// scanning into raw bytes keeps scalar JSON values intact
	if err := s.where(scope, key).Select("value").Row().Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "kv: get %s/%s failed", scope, key)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// Set upserts the JSON value for a (scope, key).
func (s *KeyValueStorage) Set(scope, key string, value datatypes.JSON) error {
	entry := model.KeyValue{
		Scope: scope,
		Key:   key,
		Value: value,
	}
	err := s.db.Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "deleted_at"}),
		},
	).Create(&entry).Error
	return errors.Wrapf(err, "kv: set %s/%s failed", scope, key)
}

// Delete removes a (scope, key) pair; a missing pair is not an error.
func (s *KeyValueStorage) Delete(scope, key string) error {
	err := s.db.Unscoped().Where(keyValueCond(scope, key)).Delete(&model.KeyValue{}).Error
	return errors.Wrapf(err, "kv: delete %s/%s failed", scope, key)
}

// GetAs unmarshals the value for (scope, key) into out, which must be a
// pointer. Returns false if the pair does not exist.
func (s *KeyValueStorage) GetAs(scope, key string, out any) (bool, error) {
	raw, err := s.Get(scope, key)
	if err != nil || raw == nil {
		return false, err
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "kv: decoding %s/%s failed", scope, key)
	}
	return true, nil
}

// SetAny marshals v to JSON and stores it at (scope, key).
func (s *KeyValueStorage) SetAny(scope, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	return s.Set(scope, key, datatypes.JSON(b))
}
