package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/vitrine/internal/config"
	"github.com/vitrine/internal/db"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	username := flag.String("username", cfg.Site.SuperRootUserName, "管理员用户名")
	password := flag.String("password", cfg.Site.SuperRootPassword, "管理员密码")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("请通过 SUPER_ROOT_USER_NAME/SUPER_ROOT_PASSWORD 或 -username/-password 提供账号")
	}

	// 初始化数据库
	if err := db.Init(cfg.Database.Driver, cfg.Database.DSN()); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	created, err := db.EnsureUser(db.DB, *username, *password)
	if err != nil {
		log.Fatal("创建用户失败:", err)
	}
	if !created {
		fmt.Println("用户已存在，无需初始化")
		return
	}
	fmt.Printf("管理员用户创建成功: %s\n", *username)
}
