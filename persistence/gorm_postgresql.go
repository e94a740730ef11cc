// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/worldsync/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gl := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gl,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormPlayerState{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) Load(playerKey string) (*models.PlayerSnapshot, error) {
	var rec models.GormPlayerState
	result := p.db.Where("player_key = ?", playerKey).First(&rec)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, err
	}
	var snap models.PlayerSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *GormPostgreSQL) Save(playerKey string, update models.PlayerUpdate) error {
	raw, err := json.Marshal(update)
	if err != nil {
		return err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	var rec models.GormPlayerState
	result := p.db.Where("player_key = ?", playerKey).First(&rec)

	if result.Error == gorm.ErrRecordNotFound {
		rec = models.GormPlayerState{
			PlayerKey: playerKey,
			Data:      fields,
		}
		return p.db.Create(&rec).Error
	} else if result.Error != nil {
		return result.Error
	}

	// 合并字段后更新
	if rec.Data == nil {
		rec.Data = make(map[string]interface{})
	}
	for k, v := range fields {
		rec.Data[k] = v
	}
	return p.db.Model(&rec).Update("data", rec.Data).Error
}

func (p *GormPostgreSQL) Flush() error {
	return nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
