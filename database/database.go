package database

import (
	"fmt"
	"log"
	"log/slog"
	"time"

	"auction-house/config"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/clients"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&clients.Client{},
		&auctions.Auction{},
		&auctions.Lot{},
		&auctions.LotImage{},
		&billing.Settlement{},
	}
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// Open connects without migrating.
func Open(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer at a time; sqlite has no row locks
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// InitDB opens the configured database, migrates it and stores it in DB.
func InitDB() {
	db, err := Open(config.DB_DRIVER, config.DB_URL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatal("AutoMigrate error: ", err)
	}
	DB = db
	slog.Info("database ready", "driver", config.DB_DRIVER)
}
