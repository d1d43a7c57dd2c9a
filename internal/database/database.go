package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkorchagin/docforge/internal/crypto"
	"github.com/mkorchagin/docforge/internal/entities"
)

type Database struct {
	DB        *gorm.DB
	encryptor *crypto.Encryptor
}

// NewDatabase opens (or creates) the SQLite database at dbPath and runs
// migrations. The encryptor protects data source credentials at rest.
func NewDatabase(dbPath string, encryptor *crypto.Encryptor) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Template{},
		&entities.DataSource{},
		&entities.GeneratedDocument{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)

	return &Database{DB: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) CreateUser(user *entities.User) error {
	return d.DB.Create(user).Error
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByTokenHash(tokenHash string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("token_hash = ?", tokenHash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) SaveUser(user *entities.User) error {
	return d.DB.Save(user).Error
}
