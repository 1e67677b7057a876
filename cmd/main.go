package main

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"PaymentsBackend/internal/api"
	"PaymentsBackend/internal/config"
	"PaymentsBackend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ensureDatabaseExists 当目标库不存在时，连接到 postgres 默认库并创建目标库（幂等）
func ensureDatabaseExists(pg *config.PostgresConfig) error {
	dbname := strings.TrimSpace(pg.DatabaseName())
	if dbname == "" || dbname == "postgres" {
		return nil
	}
	db, err := sql.Open("pgx", pg.AdminDSNString())
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.QueryRow("SELECT 1 FROM pg_database WHERE datname = $1", dbname).Scan(new(int))
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.Exec(`CREATE DATABASE "` + strings.ReplaceAll(dbname, `"`, `""`) + `"`)
		return err
	}
	return err
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func openDatabase(pg *config.PostgresConfig, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(pg.DSNString()), pg.GetGORMConfig())
	if err != nil && (strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "3D000")) {
		logger.Info("目标数据库不存在，尝试自动创建…")
		if e := ensureDatabaseExists(pg); e != nil {
			return nil, e
		}
		db, err = gorm.Open(postgres.Open(pg.DSNString()), pg.GetGORMConfig())
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pg.ConnMaxLifetime)
	return db, nil
}

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logger := newLogger(cfg.Log)
	logger.Info("配置文件加载成功")

	// 3. 初始化 PostgreSQL 连接（库不存在则先创建再连）
	db, err := openDatabase(&cfg.Postgres, logger)
	if err != nil {
		logger.Fatalf("连接PostgreSQL失败: %v", err)
	}
	logger.Info("PostgreSQL连接成功")

	// 4. 库表不存在则自动创建
	if err := db.AutoMigrate(&model.PaymentDetail{}, &model.SchemePayments{}); err != nil {
		logger.Fatalf("数据库表结构迁移失败: %v", err)
	}
	logger.Info("数据库表结构检查完成（不存在则已创建）")

	// 5. 路由
	gin.SetMode(cfg.Server.Mode)
	r := api.NewRouter(db, cfg, logger)
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 6. 启动服务
	addr := cfg.Server.Addr()
	logger.Infof("服务启动成功，监听：%s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("启动服务失败: %v", err)
	}
}
