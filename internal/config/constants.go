package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./docforge.db"

	// DefaultKeyFilePath is where the settings encryption key is kept when
	// no ENCRYPTION_KEY environment variable is set
	DefaultKeyFilePath = "./docforge.key"
)
