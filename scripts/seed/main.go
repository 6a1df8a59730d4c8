package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitrine/internal/config"
	"github.com/vitrine/internal/db"
)

// 演示数据生成器
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	dsn := flag.String("db", cfg.Database.DSN(), "数据库路径或连接串")
	profileCount := flag.Int("profiles", 3, "生成的资料数量")
	itemCount := flag.Int("items", 8, "每类内容的数量")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "随机种子")
	flag.Parse()

	// 初始化数据库
	if err := db.Init(cfg.Database.Driver, *dsn); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")
	summary, err := seed(context.Background(), db.DB, seedOptions{
		Profiles: *profileCount,
		Items:    *itemCount,
		Seed:     *seedValue,
	})
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}

	fmt.Printf("资料: %d\n", summary.Profiles)
	fmt.Printf("项目: %d，文章: %d，服务: %d\n", summary.Projects, summary.Posts, summary.Services)
	fmt.Println("演示数据生成完成！")
}
