package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/quizhub-api/internal/config"
)

// Утилита управления миграциями. Используется, когда автоматическая миграция
// при старте сервера не подходит: откат, исправление dirty-состояния, проверка
// текущей версии схемы.
//
//	go run ./cmd/migrate -cmd up
//	go run ./cmd/migrate -cmd down -steps 1
//	go run ./cmd/migrate -cmd force -version 3
func main() {
	var (
		cmdName    = flag.String("cmd", "version", "команда: up, down, force, version")
		steps      = flag.Int("steps", 1, "количество шагов для down")
		forceVer   = flag.Int("version", -1, "версия схемы для force")
		configPath = flag.String("config", "config/config.yaml", "путь к файлу конфигурации")
		sourceURL  = flag.String("source", "file://migrations", "источник миграций")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Migrate] Ошибка загрузки конфигурации: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("[Migrate] Ошибка подключения к PostgreSQL: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("[Migrate] PostgreSQL недоступен: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("[Migrate] Ошибка инициализации драйвера миграций: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(*sourceURL, "postgres", driver)
	if err != nil {
		log.Fatalf("[Migrate] Ошибка инициализации мигратора: %v", err)
	}

	switch *cmdName {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-*steps)
	case "force":
		if *forceVer < 0 {
			log.Fatal("[Migrate] Команда force требует флаг -version")
		}
		err = m.Force(*forceVer)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatalf("[Migrate] Ошибка чтения версии схемы: %v", verr)
		}
		fmt.Printf("version=%d dirty=%v\n", version, dirty)
		return
	default:
		log.Fatalf("[Migrate] Неизвестная команда: %s", *cmdName)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("[Migrate] Команда %s завершилась с ошибкой: %v", *cmdName, err)
	}
	log.Printf("[Migrate] Команда %s выполнена", *cmdName)
}
