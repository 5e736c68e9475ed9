package leave

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetById)
		leaves.GET("/:id/history", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.History)
		leaves.POST("", middleware.RBACAuthorize(rbacService, "leave", "create"), middleware.Idempotency(rdb), handler.Create)
		leaves.PUT("/:id", middleware.RBACAuthorize(rbacService, "leave", "edit"), handler.Update)
		leaves.DELETE("/:id", middleware.RBACAuthorize(rbacService, "leave", "delete"), handler.Delete)

		leaves.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Reject)
		leaves.POST("/:id/cancel-request", middleware.RBACAuthorize(rbacService, "leave", "cancel"), handler.RequestCancel)
		leaves.POST("/:id/cancel-approve", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.ApproveCancel)
		leaves.POST("/:id/cancel-reject", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.RejectCancel)
	}
}
