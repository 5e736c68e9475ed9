package overtime

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
	overtimes := r.Group("/overtimes")
	overtimes.Use(middleware.AuthMiddleware())
	{
		overtimes.GET("", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetAll)
		overtimes.GET("/:id", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.GetById)
		overtimes.GET("/:id/history", middleware.RBACAuthorize(rbacService, "overtime", "read"), handler.History)
		overtimes.POST("", middleware.RBACAuthorize(rbacService, "overtime", "create"), middleware.Idempotency(rdb), handler.Create)
		overtimes.PUT("/:id", middleware.RBACAuthorize(rbacService, "overtime", "edit"), handler.Update)
		overtimes.DELETE("/:id", middleware.RBACAuthorize(rbacService, "overtime", "delete"), handler.Delete)

		overtimes.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.Approve)
		overtimes.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.Reject)
		overtimes.POST("/:id/cancel-request", middleware.RBACAuthorize(rbacService, "overtime", "cancel"), handler.RequestCancel)
		overtimes.POST("/:id/cancel-approve", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.ApproveCancel)
		overtimes.POST("/:id/cancel-reject", middleware.RBACAuthorize(rbacService, "overtime", "approve"), handler.RejectCancel)
	}
}
