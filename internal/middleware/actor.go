package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-timeoff/internal/authz"
)

// ActorFromContext rebuilds the authorization actor from the claims the auth
// middleware projected into the gin context.
func ActorFromContext(c *gin.Context) (authz.Actor, bool) {
	id, err := uuid.Parse(c.GetString("employee_id"))
	if err != nil {
		return authz.Actor{}, false
	}

	role, ok := authz.ParseRole(c.GetString("role"))
	if !ok {
		return authz.Actor{}, false
	}

	actor := authz.Actor{ID: id, Role: role}
	if teamID := c.GetString("team_id"); teamID != "" {
		actor.TeamID = &teamID
	}
	if department := c.GetString("department"); department != "" {
		actor.DepartmentName = &department
	}
	return actor, true
}
