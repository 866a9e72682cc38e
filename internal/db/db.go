package db

import (
	"context"
	"sync"

	"github.com/mnuddindev/winoreat/pkg/logger"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	DBInstance *gorm.DB
	Once       sync.Once
	DBMu       sync.Mutex
)

type DBOptions func(*gorm.DB) error

// Dialector picks the gorm driver for name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, utils.NewError(utils.KindInternal, "Unsupported database driver", driver)
	}
}

// Open connects, applies opts and migrates models. It keeps no global state.
func Open(ctx context.Context, driver, dsn string, models []interface{}, opts ...DBOptions) (*gorm.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "DB initialization canceled")
	}

	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, utils.NewError(utils.KindInternal, "Failed to connect to Database", err.Error())
	}

	for _, opt := range opts {
		if err := opt(db); err != nil {
			return nil, utils.NewError(utils.KindInternal, "Failed to apply DB Options", err.Error())
		}
	}

	select {
	case <-ctx.Done():
		return nil, utils.WrapError(ctx.Err(), utils.KindInternal, "db migration canceled")
	default:
		if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
			return nil, utils.NewError(utils.KindInternal, "Failed to Migrate models", err.Error())
		}
	}

	return db, nil
}

// NewDB opens the process-wide database once; CloseDB releases it.
func NewDB(ctx context.Context, driver, dsn string, models []interface{}, opts ...DBOptions) (*gorm.DB, error) {
	var InitErr error
	Once.Do(func() {
		db, err := Open(ctx, driver, dsn, models, opts...)
		if err != nil {
			InitErr = err
			return
		}

		DBMu.Lock()
		DBInstance = db
		DBMu.Unlock()
	})

	if InitErr != nil {
		return nil, InitErr
	}

	DBMu.Lock()
	defer DBMu.Unlock()
	if DBInstance == nil {
		return nil, utils.NewError(utils.KindInternal, "Database not initialized")
	}

	return DBInstance, nil
}

func CloseDB(log *logger.Logger) error {
	DBMu.Lock()
	defer DBMu.Unlock()

	if DBInstance == nil {
		return nil
	}

	sqlDB, err := DBInstance.DB()
	if err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to get DB handle for closing")
		return utils.NewError(utils.KindInternal, "Failed to close database", err.Error())
	}

	if err := sqlDB.Close(); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Database close failed")
		return utils.NewError(utils.KindInternal, "Failed to close database", err.Error())
	}
	log.Info(context.Background()).Logs("Database connection closed successfully")
	DBInstance = nil
	return nil
}
