package database

import (
	"time"

	"pos-inventory/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the Postgres pool. Driver errors are translated into gorm
// sentinels (ErrDuplicatedKey, ErrForeignKeyViolated) so services can classify them.
func ConnectDB(dsn string, debugSQL bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debugSQL {
		level = gormlogger.Info
	}

	newLogger := gormlogger.New(
		logger.Get(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for Supabase Transaction Mode
	}), &gorm.Config{
		Logger:         newLogger,
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Connection Pooling Setup
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Get().Info("Database connection established")
	return db, nil
}
