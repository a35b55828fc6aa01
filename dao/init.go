package dao

import (
	"btget/model"

	"github.com/juju/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// InitDB opens the metadata database and migrates its schema.
func InitDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, errors.NotSupportedf("database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Annotatef(err, "open %s database", driver)
	}
	err = db.AutoMigrate(&model.Torrent{})
	if err != nil {
		return nil, errors.Annotate(err, "migrate schema")
	}
	return db, nil
}
