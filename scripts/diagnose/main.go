package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/vitrine/internal/config"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	dsn := flag.String("db", cfg.Database.DSN(), "数据库路径或连接串")
	flag.Parse()

	if err := db.Init(cfg.Database.Driver, *dsn); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	problems, err := diagnose(context.Background(), os.Stdout, service.NewProfileService(db.DB, nil))
	if err != nil {
		log.Fatal("诊断失败:", err)
	}
	if problems > 0 {
		fmt.Printf("发现 %d 个问题\n", problems)
		os.Exit(1)
	}
	fmt.Println("一切正常")
}
