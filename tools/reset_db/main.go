package main

import (
	"fmt"
	"log"
	"os"

	"cme-platform/config"
	"cme-platform/internal/model"
	dbPkg "cme-platform/pkg/db"
)

// 清空全部业务表并按当前模型重建
func main() {
	cfg := config.LoadConfig()

	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	defer dbPkg.Close(db)

	fmt.Printf("数据库驱动: %s  库名: %s\n", cfg.Database.Driver, cfg.Database.Database)
	if cfg.App.IsProduction() {
		log.Fatal("生产环境禁止重置数据库")
	}

	models := model.AllModels()
	fmt.Printf("\n警告：该操作将删除以下 %d 张表的全部数据并重建表结构！\n", len(models))
	for _, m := range models {
		stmt := db.Model(m).Statement
		if err := stmt.Parse(m); err == nil {
			fmt.Printf("  - %s\n", stmt.Table)
		}
	}
	fmt.Print("输入 YES 确认: ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "YES" {
		fmt.Println("操作已取消")
		os.Exit(0)
	}

	// 依赖表在后，倒序删除
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			log.Fatalf("删除表失败: %v", err)
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("重建表失败: %v", err)
	}

	fmt.Println("\n数据库重置完成，表结构已按当前模型重建")
}
