package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	repo "github.com/ogurasousui/colink-employee-service/internal/adapters/repository/postgres"
	"github.com/ogurasousui/colink-employee-service/internal/adapters/web"
	"github.com/ogurasousui/colink-employee-service/internal/core/directory"
	"github.com/ogurasousui/colink-employee-service/internal/core/employee"
	"github.com/ogurasousui/colink-employee-service/internal/core/member"
	"github.com/ogurasousui/colink-employee-service/internal/platform/config"
	pg "github.com/ogurasousui/colink-employee-service/internal/platform/db/postgres"
	"github.com/ogurasousui/colink-employee-service/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	memberRepo := repo.NewMemberRepository(dbPool)
	employeeRepo := repo.NewEmployeeRepository(dbPool)
	directoryRepo := repo.NewDirectoryRepository(dbPool)

	memberSvc := member.NewService(memberRepo, txManager)
	employeeSvc := employee.NewService(employeeRepo, memberRepo, nil, txManager)
	directorySvc := directory.NewService(directoryRepo, nil, txManager)

	handler := web.New(memberSvc, employeeSvc, directorySvc, cfg.Server.CORSOrigins)
	httpServer := server.New(cfg.Server.ListenAddr, handler)

	log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
