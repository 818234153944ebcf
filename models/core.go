package models

import (
	"fmt"
	"log"

	"github.com/GrainArc/ContourMap/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// makeTileIndex 为DEM瓦片库补建xyz索引，加速按瓦片坐标取高程
func makeTileIndex(DB *gorm.DB) {
	// 查询索引是否已存在
	var exists bool
	checkIndexSql := `
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type = 'index' AND name = 'idx_tile_xyz'
	`

	err := DB.Raw(checkIndexSql).Scan(&exists).Error
	if err != nil {
		fmt.Println("Error checking index existence:", err.Error())
		return
	}

	if !exists {
		createIndexSql := `CREATE INDEX idx_tile_xyz ON tiles (tile_column, tile_row, zoom_level);`
		err := DB.Exec(createIndexSql).Error
		if err != nil {
			fmt.Println("Error creating index:", err.Error())
		} else {
			fmt.Println("成功创建索引")
		}
	}
}

func GetDB() *gorm.DB {
	return DB
}

func InitDB() {
	// 初始化 DEM 数据库
	DemDB, err := gorm.Open(sqlite.Open(config.Dem), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Failed to open DEM database: %v", err)
	} else {
		makeTileIndex(DemDB)
		// 立即关闭 DEM 数据库连接
		if sqlDB, err := DemDB.DB(); err == nil {
			defer sqlDB.Close()
		}
	}

	// 初始化主数据库
	DB, err = gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 设置命名策略
	DB.NamingStrategy = schema.NamingStrategy{
		SingularTable: true,
	}

	// 迁移等高线相关表
	if err := DB.AutoMigrate(&ContourRecord{}); err != nil {
		log.Printf("Failed to migrate tables: %v", err)
	}
}
