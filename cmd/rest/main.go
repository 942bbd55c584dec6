package main

import (
	"context"
	"log"

	"ai-chatspace-be/internal/bootstrap"
	"ai-chatspace-be/internal/config"
	"ai-chatspace-be/internal/server"
	"ai-chatspace-be/internal/tracer"
	"ai-chatspace-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
