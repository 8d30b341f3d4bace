package directory

import "context"

// Repository は部署・職位永続化の抽象です。
type Repository interface {
	CreateDepartment(ctx context.Context, d *Department) (*Department, error)
	FindDepartmentByName(ctx context.Context, name string) (*Department, error)
	ListDepartments(ctx context.Context) ([]*Department, error)
	CreateRole(ctx context.Context, r *Role) (*Role, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)
}
