package app

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-timeoff/internal/authz"
	"go-timeoff/internal/directory"
	"go-timeoff/internal/leave"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/overtime"
	"go-timeoff/internal/rbac"
	"go-timeoff/internal/shared/cache"
	"go-timeoff/internal/txlog"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB)
	overtimeRepo := overtime.NewRepository(gormDB)
	txlogRepo := txlog.NewRepository(gormDB)
	directoryRepo := directory.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService(
		filepath.Join("internal", "rbac", "model.conf"),
		filepath.Join("internal", "rbac", "policy.csv"),
	)
	if err != nil {
		return err
	}

	evaluator := authz.NewEvaluator(authz.Policy{
		MissingScopeMatches: os.Getenv("AUTHZ_STRICT_SCOPE") != "true",
	})

	listCache := cache.NewResponseCache(rdb, 30*time.Second)

	// --- Services ---
	leaveService := leave.NewService(db, leaveRepo, txlogRepo, directoryRepo, outboxRepo, listCache, evaluator)
	overtimeService := overtime.NewService(db, overtimeRepo, txlogRepo, directoryRepo, outboxRepo, listCache, evaluator)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService)
	overtimeHandler := overtime.NewHandler(overtimeService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		overtime.RegisterRoutes(api, overtimeHandler, rbacService, rdb)
	}

	return nil
}
