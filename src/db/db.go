package db

import (
	"hbs/src/config"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// GetDb returns the process-wide gorm handle, opening the postgres pool on
// first use. Booking traffic is short request-scoped queries, so the pool
// stays small and recycles connections hourly.
func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	_db, err := gorm.Open(postgres.Open(config.GetDSN()))
	if err != nil {
		log.Printf("Error connecting to database: %s\n", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db = _db
	return _db
}

// NewDB swaps in a custom handle, used by tests to inject a mocked pool.
func NewDB(newdb *gorm.DB) {
	db = newdb
}
