package main

import (
	"context"
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	log "github.com/sirupsen/logrus"

	"github.com/ManiEids/vef2hop2/config"
	"github.com/ManiEids/vef2hop2/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("storage init starting")

	if cfg.StorageConnectionString == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}

	ctx := context.Background()

	if err := createTables(ctx, cfg.StorageConnectionString, []string{
		cfg.Tables.Tasks,
		cfg.Tables.Categories,
		cfg.Tables.Tags,
		cfg.Tables.Users,
	}); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	if cfg.ChangesQueue != "" {
		if err := createQueue(ctx, cfg.StorageConnectionString, cfg.ChangesQueue); err != nil {
			log.Fatalf("create queue: %v", err)
		}
	}

	log.Info("storage init complete")
}

func createTables(ctx context.Context, connStr string, names []string) error {
	svc, err := storage.NewServiceClient(connStr)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := svc.NewClient(name).CreateTable(ctx, nil); err != nil {
			var respErr *azcore.ResponseError
			if !(errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)) {
				return err
			}
			log.WithField("table", name).Debug("table exists")
			continue
		}
		log.WithField("table", name).Info("table created")
	}
	return nil
}

func createQueue(ctx context.Context, connStr, name string) error {
	q, err := storage.NewQueueClient(connStr, name)
	if err != nil {
		return err
	}
	if _, err := q.Create(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists") {
			return err
		}
		log.WithField("queue", name).Debug("queue exists")
		return nil
	}
	log.WithField("queue", name).Info("queue created")
	return nil
}
