package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/colink-employee-service/internal/core/directory"
	pgdb "github.com/ogurasousui/colink-employee-service/internal/platform/db/postgres"
)

// DirectoryRepository は PostgreSQL を利用した部署・職位永続化の実装です。
type DirectoryRepository struct {
	pool pgdb.Queryer
}

// NewDirectoryRepository は DirectoryRepository を生成します。
func NewDirectoryRepository(pool pgdb.Queryer) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

// CreateDepartment は部署を新規作成します。
func (r *DirectoryRepository) CreateDepartment(ctx context.Context, d *directory.Department) (*directory.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO department (dept_name, created_at, updated_at)
        VALUES ($1, $2, $3)
        RETURNING dept_id, dept_name, created_at, updated_at
    `, d.Name, d.CreatedAt, d.UpdatedAt)

	created, err := scanDepartment(row)
	if err != nil {
		return nil, translateDirectoryPgError(err)
	}
	return created, nil
}

// FindDepartmentByName は部署名で部署を取得します。
func (r *DirectoryRepository) FindDepartmentByName(ctx context.Context, name string) (*directory.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT dept_id, dept_name, created_at, updated_at
          FROM department
         WHERE dept_name = $1
         LIMIT 1
    `, name)

	found, err := scanDepartment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrDepartmentNotFound
		}
		return nil, translateDirectoryPgError(err)
	}
	return found, nil
}

// ListDepartments は部署の一覧を取得します。
func (r *DirectoryRepository) ListDepartments(ctx context.Context) ([]*directory.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT dept_id, dept_name, created_at, updated_at
          FROM department
         ORDER BY dept_id
    `)
	if err != nil {
		return nil, translateDirectoryPgError(err)
	}
	defer rows.Close()

	var departments []*directory.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, translateDirectoryPgError(err)
		}
		departments = append(departments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, translateDirectoryPgError(err)
	}

	return departments, nil
}

// CreateRole は職位を新規作成します。
func (r *DirectoryRepository) CreateRole(ctx context.Context, role *directory.Role) (*directory.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO role (role_name, role_level, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING role_id, role_name, role_level, created_at, updated_at
    `, role.Name, role.Level, role.CreatedAt, role.UpdatedAt)

	created, err := scanRole(row)
	if err != nil {
		return nil, translateDirectoryPgError(err)
	}
	return created, nil
}

// FindRoleByName は職位名で職位を取得します。
func (r *DirectoryRepository) FindRoleByName(ctx context.Context, name string) (*directory.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT role_id, role_name, role_level, created_at, updated_at
          FROM role
         WHERE role_name = $1
         LIMIT 1
    `, name)

	found, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrRoleNotFound
		}
		return nil, translateDirectoryPgError(err)
	}
	return found, nil
}

// ListRoles は職位の一覧を序列の高い順に取得します。
func (r *DirectoryRepository) ListRoles(ctx context.Context) ([]*directory.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT role_id, role_name, role_level, created_at, updated_at
          FROM role
         ORDER BY role_level DESC, role_id
    `)
	if err != nil {
		return nil, translateDirectoryPgError(err)
	}
	defer rows.Close()

	var roles []*directory.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, translateDirectoryPgError(err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, translateDirectoryPgError(err)
	}

	return roles, nil
}

func scanDepartment(row pgx.Row) (*directory.Department, error) {
	var (
		id        int64
		name      string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &directory.Department{ID: id, Name: name, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

func scanRole(row pgx.Row) (*directory.Role, error) {
	var (
		id        int64
		name      string
		level     int
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &level, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &directory.Role{ID: id, Name: name, Level: level, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

func translateDirectoryPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case "uq_department_name":
			return directory.ErrDepartmentAlreadyExists
		case "uq_role_name":
			return directory.ErrRoleAlreadyExists
		}
	}

	return err
}
