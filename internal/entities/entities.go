package entities

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// DocumentStatus tracks a generation job through its lifecycle.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusRunning   DocumentStatus = "running"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	TokenHash    string         `gorm:"index;size:64" json:"-"` // sha256 of the API token
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Template is a stored document template. TemplateJSON holds the document
// description (rich editorState or simple content form) as serialized JSON.
type Template struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	UserID       string         `gorm:"index;size:64" json:"user_id"`
	Name         string         `gorm:"size:256" json:"name"`
	Description  string         `gorm:"size:1024" json:"description,omitempty"`
	TemplateJSON string         `gorm:"type:text" json:"-"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Document deserializes the stored template description. An empty column
// yields an empty document.
func (t *Template) Document() (map[string]any, error) {
	if t.TemplateJSON == "" {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(t.TemplateJSON), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DataSource is a stored connector configuration. Settings holds the
// connector-specific settings JSON, encrypted at rest; FieldMappings holds
// the ordered mapping list as plain JSON.
type DataSource struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	UserID        string         `gorm:"index;size:64" json:"user_id"`
	Name          string         `gorm:"size:256" json:"name"`
	Type          string         `gorm:"index;size:50" json:"type"`
	Settings      string         `gorm:"type:text" json:"-"`
	FieldMappings string         `gorm:"type:text" json:"-"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	LastSyncedAt  *time.Time     `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// GeneratedDocument records one generation job and its artifact.
type GeneratedDocument struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	UserID       string         `gorm:"index;size:64" json:"user_id"`
	TemplateID   string         `gorm:"index;size:36" json:"template_id"`
	DataSourceID *string        `gorm:"index;size:36" json:"data_source_id,omitempty"`
	Status       DocumentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Error        string         `gorm:"type:text" json:"error,omitempty"`
	StoragePath  string         `gorm:"size:1024" json:"storage_path,omitempty"`
	InputData    string         `gorm:"type:text" json:"-"`
	SourceQuery  string         `gorm:"type:text" json:"-"`
	Options      string         `gorm:"type:text" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
