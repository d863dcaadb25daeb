package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"trivia-token-service/conf"
	"trivia-token-service/database"
	model "trivia-token-service/models"
	"trivia-token-service/registry"
	"trivia-token-service/service/catalog_service"
	"trivia-token-service/service/common_service"

	"github.com/schollz/progressbar/v3"
)

var (
	ENV         string
	perCategory int
	category    string
	batchSize   int
)

func init() {
	flag.StringVar(&ENV, "env", "loc", "Environment: loc/test/mainnet/example")
	flag.IntVar(&perCategory, "per-category", 100, "Catalog designs to create per category")
	flag.StringVar(&category, "category", "", "Seed only this category slug (default all)")
	flag.IntVar(&batchSize, "batch", 50, "Items per store write")
}

func main() {
	flag.Parse()
	conf.SystemEnvironmentEnum = conf.ParseEnvironment(ENV)
	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	categories := registry.Categories()
	if category != "" {
		code, err := registry.CategoryCode(category)
		if err != nil {
			log.Fatalf("Invalid category: %v", err)
		}
		categories = []registry.Category{{Slug: category, Code: code}}
	}
	if perCategory <= 0 || batchSize <= 0 {
		log.Fatalf("-per-category and -batch must be positive")
	}

	db, err := openDatabase(conf.Cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	catalog := catalog_service.NewCatalogService(db, 0, common_service.Options{
		Logger: log.New(os.Stderr, "", log.LstdFlags),
	})

	total := int64(perCategory * len(categories))
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription("Seeding catalog"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	ctx := context.Background()
	for _, c := range categories {
		for start := 0; start < perCategory; start += batchSize {
			end := min(start+batchSize, perCategory)
			items := make([]*model.CatalogItem, 0, end-start)
			for i := start; i < end; i++ {
				items = append(items, &model.CatalogItem{
					CategoryID:  c.Slug,
					TierDefault: model.TierDefaultBase,
					Title:       fmt.Sprintf("%s design #%d", c.Code, i+1),
				})
			}
			if err := catalog.Seed(ctx, items); err != nil {
				log.Fatalf("Failed to seed %s: %v", c.Slug, err)
			}
			_ = bar.Add(len(items))
		}
	}
	_ = bar.Finish()
	fmt.Println()

	for _, c := range categories {
		n, err := catalog.Availability(ctx, c.Slug)
		if err != nil {
			log.Printf("Failed to count %s: %v", c.Slug, err)
			continue
		}
		log.Printf("%-14s %d available", c.Slug, n)
	}
}

// openDatabase open the configured store
func openDatabase(cfg conf.DatabaseConfig) (database.Database, error) {
	switch dbType := database.DBType(cfg.Type); dbType {
	case database.DBTypePebble:
		return database.NewDatabase(dbType, &database.PebbleConfig{DataDir: cfg.DataDir})
	case database.DBTypePostgres:
		return database.NewDatabase(dbType, &database.PostgresConfig{
			DSN:             cfg.Dsn,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
