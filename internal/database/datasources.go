package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkorchagin/docforge/internal/connectors"
	"github.com/mkorchagin/docforge/internal/entities"
)

// CreateDataSource stores a new data source. Settings are encrypted before
// they touch the database; field mappings are stored as plain JSON.
func (d *Database) CreateDataSource(ds *entities.DataSource, settings map[string]any, mappings []connectors.FieldMapping) error {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	if err := d.setDataSourcePayload(ds, settings, mappings); err != nil {
		return err
	}
	return d.DB.Create(ds).Error
}

// UpdateDataSource replaces the stored settings and mappings of an existing
// data source. Pass nil settings or mappings to keep the stored values.
func (d *Database) UpdateDataSource(ds *entities.DataSource, settings map[string]any, mappings []connectors.FieldMapping) error {
	if settings != nil || mappings != nil {
		current, currentMappings, err := d.dataSourcePayload(ds)
		if err != nil {
			return err
		}
		if settings == nil {
			settings = current
		}
		if mappings == nil {
			mappings = currentMappings
		}
		if err := d.setDataSourcePayload(ds, settings, mappings); err != nil {
			return err
		}
	}
	return d.DB.Save(ds).Error
}

func (d *Database) GetDataSource(id, userID string) (*entities.DataSource, error) {
	var ds entities.DataSource
	err := d.DB.Where("id = ? AND user_id = ?", id, userID).First(&ds).Error
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

func (d *Database) GetDataSourcesForUser(userID string) ([]entities.DataSource, error) {
	var sources []entities.DataSource
	err := d.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sources).Error
	return sources, err
}

func (d *Database) DeleteDataSource(id, userID string) error {
	return d.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.DataSource{}).Error
}

func (d *Database) TouchDataSourceSync(ds *entities.DataSource) error {
	now := time.Now().UTC()
	ds.LastSyncedAt = &now
	return d.DB.Model(ds).Update("last_synced_at", now).Error
}

// ConnectorConfig decrypts a stored data source into a runnable connector
// configuration.
func (d *Database) ConnectorConfig(ds *entities.DataSource) (connectors.Config, error) {
	settings, mappings, err := d.dataSourcePayload(ds)
	if err != nil {
		return connectors.Config{}, err
	}
	return connectors.Config{
		Type:          ds.Type,
		Name:          ds.Name,
		Settings:      settings,
		FieldMappings: mappings,
	}, nil
}

func (d *Database) setDataSourcePayload(ds *entities.DataSource, settings map[string]any, mappings []connectors.FieldMapping) error {
	if settings == nil {
		settings = map[string]any{}
	}
	if mappings == nil {
		mappings = []connectors.FieldMapping{}
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	encrypted, err := d.encryptor.Encrypt(string(settingsJSON))
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}

	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("failed to serialize field mappings: %w", err)
	}

	ds.Settings = encrypted
	ds.FieldMappings = string(mappingsJSON)
	return nil
}

func (d *Database) dataSourcePayload(ds *entities.DataSource) (map[string]any, []connectors.FieldMapping, error) {
	settings := map[string]any{}
	if ds.Settings != "" {
		decrypted, err := d.encryptor.Decrypt(ds.Settings)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt settings: %w", err)
		}
		if decrypted != "" {
			if err := json.Unmarshal([]byte(decrypted), &settings); err != nil {
				return nil, nil, fmt.Errorf("failed to parse settings: %w", err)
			}
		}
	}

	var mappings []connectors.FieldMapping
	if ds.FieldMappings != "" {
		if err := json.Unmarshal([]byte(ds.FieldMappings), &mappings); err != nil {
			return nil, nil, fmt.Errorf("failed to parse field mappings: %w", err)
		}
	}

	return settings, mappings, nil
}
