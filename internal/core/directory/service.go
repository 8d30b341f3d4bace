package directory

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は部署・職位のプロビジョニングをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は部署・職位ユースケースの公開インターフェースです。
type UseCase interface {
	CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error)
	ListDepartments(ctx context.Context) ([]*Department, error)
	CreateRole(ctx context.Context, in CreateRoleInput) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateDepartmentInput は部署作成時の入力です。
type CreateDepartmentInput struct {
	Name string
}

// CreateRoleInput は職位作成時の入力です。
type CreateRoleInput struct {
	Name  string
	Level int
}

// CreateDepartment は新しい部署を作成します。
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	var created *Department
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDepartmentNotExists(txCtx, name); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.CreateDepartment(txCtx, &Department{Name: name, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// ListDepartments は部署の一覧を取得します。
func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	var departments []*Department
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListDepartments(txCtx)
		if err != nil {
			return err
		}
		departments = result
		return nil
	}); err != nil {
		return nil, err
	}

	return departments, nil
}

// CreateRole は新しい職位を作成します。
func (s *Service) CreateRole(ctx context.Context, in CreateRoleInput) (*Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if in.Level < 0 {
		return nil, ErrInvalidLevel
	}

	var created *Role
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureRoleNotExists(txCtx, name); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.CreateRole(txCtx, &Role{Name: name, Level: in.Level, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// ListRoles は職位の一覧を取得します。
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	var roles []*Role
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListRoles(txCtx)
		if err != nil {
			return err
		}
		roles = result
		return nil
	}); err != nil {
		return nil, err
	}

	return roles, nil
}

func (s *Service) ensureDepartmentNotExists(ctx context.Context, name string) error {
	d, err := s.repo.FindDepartmentByName(ctx, name)
	if err != nil && !errors.Is(err, ErrDepartmentNotFound) {
		return err
	}
	if d != nil {
		return ErrDepartmentAlreadyExists
	}
	return nil
}

func (s *Service) ensureRoleNotExists(ctx context.Context, name string) error {
	r, err := s.repo.FindRoleByName(ctx, name)
	if err != nil && !errors.Is(err, ErrRoleNotFound) {
		return err
	}
	if r != nil {
		return ErrRoleAlreadyExists
	}
	return nil
}
