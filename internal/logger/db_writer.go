package logger

import (
	"context"
	"fmt"
	"time"

	"supplier-portal/internal/config"
	"supplier-portal/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

const logCollection = "app_logs"

// LogEntry holds the data passed from zap to the worker.
type LogEntry struct {
	Level   zapcore.Level
	Message string
	Logger  string
	Caller  string
	Time    time.Time
	Fields  map[string]interface{}
}

type logRecord struct {
	AppID     string                 `bson:"app_id"`
	Level     string                 `bson:"level"`
	Message   string                 `bson:"message"`
	Logger    string                 `bson:"logger,omitempty"`
	Caller    string                 `bson:"caller,omitempty"`
	Fields    map[string]interface{} `bson:"fields,omitempty"`
	CreatedAt time.Time              `bson:"created_at"`
}

// DBLogWriter handles the async writing.
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000),
		appId:   cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks; entries are dropped when the buffer is full.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		created := entry.Time
		if created.IsZero() {
			created = time.Now()
		}
		record := logRecord{
			AppID:     w.appId,
			Level:     entry.Level.String(),
			Message:   entry.Message,
			Logger:    entry.Logger,
			Caller:    entry.Caller,
			Fields:    entry.Fields,
			CreatedAt: created.UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = w.db.Collection(logCollection).InsertOne(ctx, record)
		cancel()
	}
}
