package main

import (
	"log"
	"os"

	"carewatch-data/internal/config"
	"carewatch-data/internal/database"
	"carewatch-data/internal/migrations"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

// 内嵌迁移执行器：
//
//	apply-migration           应用全部待执行迁移
//	apply-migration down      回退一个版本
//	apply-migration status    查看迁移状态
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	default:
		log.Fatalf("Unknown command %q (want up, down or status)", command)
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", command, err)
	}
	log.Printf("Migration %s completed", command)
}
