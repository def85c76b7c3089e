package history

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 历史投影库的配置
// 默认是仓库本地的 sqlite 文件；团队共享场景可以指向 postgres
type Config struct {
	Driver string // "sqlite" (默认) 或 "postgres"
	DSN    string // sqlite: 文件路径；postgres: 标准 DSN
}

// DB 封装了 GORM 实例，作为历史投影层的入口
type DB struct {
	conn *gorm.DB
}

// NewDB 初始化数据库连接并迁移表结构
func NewDB(cfg Config) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported history driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// CLI 场景静默 SQL 日志
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// 自动迁移表结构
	if err := db.AutoMigrate(&CommitRecord{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	return &DB{conn: db}, nil
}

// NewWithConn 允许使用现有的 GORM 连接初始化 DB
// 用于依赖注入和单元测试 (内存 sqlite)
func NewWithConn(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) GetConn() *gorm.DB {
	return d.conn
}
