package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KeyValueScopeGlobal      = ""
	KeyValueScopePermissions = "permissions"
	KeyValueScopeAlerts      = "alerts"

	KeyValueKeyWindow      = "window"
	KeyValueKeyLastAlert   = "last_alert"
	KeyValueKeyLastSavedBy = "last_saved_by"
)

// KeyValue stores arbitrary key-value data.
//
// Values are kept in a datatypes.JSON column, which maps to the native JSON
// type where available and to TEXT otherwise. The Scope field namespaces keys.
type KeyValue struct {
	CreatedAt int            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Scope allows grouping keys by namespace; empty string is global scope.
	Scope string `gorm:"primaryKey;size:64" json:"scope"`

	// Key is the identifier within a scope.
	Key string `gorm:"primaryKey;size:64" json:"key"`

	Value datatypes.JSON `json:"value"`
}

// KeyValueStore defines the operations of the scoped key-value storage.
type KeyValueStore interface {
	// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
	Get(scope, key string) (datatypes.JSON, error)
	// Set stores/replaces the value for a (scope, key).
	Set(scope, key string, value datatypes.JSON) error
	// Delete removes the entry for a (scope, key). No error if missing.
	Delete(scope, key string) error
	// GetAs unmarshals the value for (scope, key) into out; returns false if not found
	GetAs(scope, key string, out any) (bool, error)
	// SetAny marshals v and stores it at (scope, key)
	SetAny(scope, key string, v any) error
}
