package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/agriai/backend-mandi/internal/db"
	"github.com/agriai/backend-mandi/internal/repo"
)

// Seeds a handful of demo crop listings covering all three fee groups so
// cart and deal flows can be exercised against a fresh database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := db.Migrate(dbURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	store := repo.New(pool)
	crops := []repo.Crop{
		{FarmerID: "seed-farmer-1", Name: "Wheat", Category: "crops", Variety: "Sharbati", PricePerUnit: 24, QuantityAvailable: 5000},
		{FarmerID: "seed-farmer-1", Name: "Rice", Category: "crops", Variety: "Sona Masoori", PricePerUnit: 38, QuantityAvailable: 3000},
		{FarmerID: "seed-farmer-2", Name: "Tomato", Category: "vegetables", Variety: "Hybrid", PricePerUnit: 18, QuantityAvailable: 800},
		{FarmerID: "seed-farmer-2", Name: "Mango", Category: "fruits", Variety: "Alphonso", PricePerUnit: 120, QuantityAvailable: 400},
		{FarmerID: "seed-farmer-3", Name: "Turmeric", Category: "spices", Variety: "Salem", PricePerUnit: 95, QuantityAvailable: 600},
		{FarmerID: "seed-farmer-3", Name: "Black Pepper", Category: "masale", Variety: "Malabar", PricePerUnit: 480, QuantityAvailable: 150},
	}

	log.Println("Seeding crops...")
	for _, c := range crops {
		created, err := store.CreateCrop(ctx, c)
		if err != nil {
			log.Fatalf("Failed to seed crop %s: %v", c.Name, err)
		}
		log.Printf("  %s (%s) -> %s", created.Name, created.Category, created.ID)
	}
	log.Println("Seeding completed successfully!")
}
