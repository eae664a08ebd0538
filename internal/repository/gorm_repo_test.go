package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// every new connection would get its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrateGorm(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}

func TestGormCouponRepo(t *testing.T) {
	testCouponRepo(t, NewGormCouponRepo(setupTestDB(t)))
}

func TestGormUserCouponRepo(t *testing.T) {
	testUserCouponRepo(t, NewGormUserCouponRepo(setupTestDB(t)))
}
