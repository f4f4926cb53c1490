package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/decodeit/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func fixedClock(day string) func() time.Time {
	ts, err := time.ParseInLocation(DateLayout, day, time.Local)
	if err != nil {
		panic(err)
	}
	ts = ts.Add(10 * time.Hour)
	return func() time.Time { return ts }
}

func mustRegister(t *testing.T, accounts *AccountService, email, username string) *AuthResult {
	t.Helper()
	res, err := accounts.Register(RegisterInput{Email: email, Password: "pass1234", Birthday: "1990-08-01", Username: username})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", email, err)
	}
	return res
}
