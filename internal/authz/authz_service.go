package authz

import (
	"go-hrms/internal/shared/apperror"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// The policy is a fixed capability table over the closed role set, so
// the model lives in code rather than behind a storage adapter. One
// capability check per route replaces ad-hoc role list comparisons.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

var capabilities = [][3]string{
	{string(RoleAdmin), "employee", "create"},
	{string(RoleAdmin), "employee", "read"},
	{string(RoleAdmin), "employee", "update"},
	{string(RoleAdmin), "employee", "delete"},
	{string(RoleAdmin), "leave", "read_all"},
	{string(RoleAdmin), "leave", "approve"},
	{string(RoleAdmin), "leave_balance", "read_any"},

	{string(RoleHROfficer), "employee", "create"},
	{string(RoleHROfficer), "employee", "read"},
	{string(RoleHROfficer), "employee", "update"},
	{string(RoleHROfficer), "leave", "read_all"},
	{string(RoleHROfficer), "leave", "approve"},
	{string(RoleHROfficer), "leave_balance", "read_any"},
}

type EnforceRequest struct {
	Role     Role
	Resource string
	Action   string
}

type Service interface {
	Enforce(req EnforceRequest) (bool, error)
	Authorize(id Identity, resource, action string) (Identity, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range capabilities {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	return s.enforcer.Enforce(string(req.Role), req.Resource, req.Action)
}

// Authorize returns the identity unchanged when its role holds the
// capability, or ErrForbidden. Callers that only need ownership checks
// compare identities directly instead.
func (s *service) Authorize(id Identity, resource, action string) (Identity, error) {
	allowed, err := s.Enforce(EnforceRequest{Role: id.Role, Resource: resource, Action: action})
	if err != nil {
		return Identity{}, err
	}
	if !allowed {
		return Identity{}, apperror.ErrForbidden
	}
	return id, nil
}
