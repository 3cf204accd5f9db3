package database

import (
	"context"
	"log"
	"time"

	"supplier-portal/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

// MongodbDB holds the log archive database. DB is nil when MONGO_URI is unset.
type MongodbDB struct {
	DB *mongo.Database
}

// NewMongo creates a MongoDB connection with lifecycle management.
func NewMongo(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	if cfg.MongoURI == "" {
		return &MongodbDB{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &MongodbDB{DB: client.Database(cfg.MongoDB)}, nil
}
