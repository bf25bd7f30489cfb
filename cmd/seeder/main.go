// Seeds the users collection with fake accounts for local development.
// The chat service only reads users; in production they come from signup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	cfgpkg "github.com/surya16122114/roomies-radar/internal/config"
	"github.com/surya16122114/roomies-radar/internal/models"
	"github.com/surya16122114/roomies-radar/internal/repository"
)

func main() {
	count := flag.Int("count", 20, "number of users to create")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := cfgpkg.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mc, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	store := repository.NewMongoUserStore(mc.Database(cfg.Mongo.Database).Collection("users"))

	gofakeit.Seed(time.Now().UnixNano())
	for i := 0; i < *count; i++ {
		user := models.User{
			ID:        uuid.NewString(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     gofakeit.Email(),
		}
		if err := store.Insert(ctx, user); err != nil {
			log.Fatalf("insert user: %v", err)
		}
		fmt.Printf("%s  %s %s <%s>\n", user.ID, user.FirstName, user.LastName, user.Email)
	}
}
