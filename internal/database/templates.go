package database

import (
	"github.com/google/uuid"

	"github.com/mkorchagin/docforge/internal/entities"
)

func (d *Database) CreateTemplate(template *entities.Template) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	return d.DB.Create(template).Error
}

func (d *Database) GetTemplate(id, userID string) (*entities.Template, error) {
	var template entities.Template
	err := d.DB.Where("id = ? AND user_id = ?", id, userID).First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (d *Database) GetTemplatesForUser(userID string) ([]entities.Template, error) {
	var templates []entities.Template
	err := d.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&templates).Error
	return templates, err
}

func (d *Database) UpdateTemplate(template *entities.Template) error {
	return d.DB.Save(template).Error
}

func (d *Database) DeleteTemplate(id, userID string) error {
	return d.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Template{}).Error
}
