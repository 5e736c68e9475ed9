package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
)

// Service answers the coarse route-level question "may this role touch this
// resource/action at all". Fine-grained ownership and scope rules live in
// the authz evaluator inside the services.
//
//go:generate mockgen -source=enforcer.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

// NewService loads the static model and policy files shipped with the
// binary; roles are closed, so there is no runtime policy editing.
func NewService(modelPath, policyPath string) (Service, error) {
	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, err
	}
	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(role, resource, action)
}
