// internal/domain/settings/entity.go
package settings

import "time"

// Well-known setting keys
const (
	KeyMaintenanceMode = "maintenance_mode"
	KeyStoreName       = "store_name"
	KeySupportEmail    = "support_email"
)

// Setting is one key/value row of store configuration
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Value     string    `gorm:"size:1000" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Setting) TableName() string {
	return "settings"
}
