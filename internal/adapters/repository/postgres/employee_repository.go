package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/colink-employee-service/internal/core/employee"
	pgdb "github.com/ogurasousui/colink-employee-service/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// FindByID は ID で社員を取得します。現在状態も合わせて読み込みます。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT emp_id, emp_no, dept_id, role_id, name, email, mobile, hire_date, birthday, created_at, updated_at
          FROM employee
         WHERE emp_id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}

	statuses, err := r.loadStatuses(ctx, exec, []int64{found.ID})
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	found.Statuses = statuses[found.ID]

	return found, nil
}

// Update は社員のプロフィール項目を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employee
           SET name = $1,
               email = $2,
               mobile = $3,
               updated_at = $4
         WHERE emp_id = $5
        RETURNING emp_id, emp_no, dept_id, role_id, name, email, mobile, hire_date, birthday, created_at, updated_at
    `,
		e.Name,
		e.Email,
		e.Mobile,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// List は社員の一覧を emp_id 昇順で取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT emp_id, emp_no, dept_id, role_id, name, email, mobile, hire_date, birthday, created_at, updated_at
          FROM employee
         ORDER BY emp_id
         LIMIT $1
        OFFSET $2
    `, limitWithBuffer, filter.Offset)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	if len(employees) > 0 {
		ids := make([]int64, 0, len(employees))
		for _, e := range employees {
			ids = append(ids, e.ID)
		}

		statuses, err := r.loadStatuses(ctx, exec, ids)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		for _, e := range employees {
			e.Statuses = statuses[e.ID]
		}
	}

	return employees, nextToken, nil
}

// FindStatusByEmployee は社員の現在状態行を取得します。
func (r *EmployeeRepository) FindStatusByEmployee(ctx context.Context, empID int64) (*employee.Status, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT status_id, emp_id, status, updated_at
          FROM employee_status
         WHERE emp_id = $1
         LIMIT 1
    `, empID)

	st, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrStatusNotFound
		}
		return nil, translateEmployeePgError(err)
	}
	return st, nil
}

// InsertStatus は現在状態行を新規作成します。
// 同一社員への同時挿入は uq_employee_status_emp に衝突し ErrStatusConflict になります。
func (r *EmployeeRepository) InsertStatus(ctx context.Context, st *employee.Status) (*employee.Status, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employee_status (emp_id, status, updated_at)
        VALUES ($1, $2, $3)
        RETURNING status_id, emp_id, status, updated_at
    `,
		st.EmpID,
		string(st.Value),
		st.UpdatedAt,
	)

	created, err := scanStatus(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// UpdateStatus は既存の現在状態行を上書きします。
func (r *EmployeeRepository) UpdateStatus(ctx context.Context, st *employee.Status) (*employee.Status, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employee_status
           SET status = $1,
               updated_at = $2
         WHERE status_id = $3
        RETURNING status_id, emp_id, status, updated_at
    `,
		string(st.Value),
		st.UpdatedAt,
		st.ID,
	)

	updated, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrStatusNotFound
		}
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

func (r *EmployeeRepository) loadStatuses(ctx context.Context, exec pgdb.Queryer, empIDs []int64) (map[int64][]*employee.Status, error) {
	rows, err := exec.Query(ctx, `
        SELECT status_id, emp_id, status, updated_at
          FROM employee_status
         WHERE emp_id = ANY($1)
         ORDER BY updated_at DESC, status_id DESC
    `, empIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]*employee.Status, len(empIDs))
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		result[st.EmpID] = append(result[st.EmpID], st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id        int64
		empNo     string
		deptID    int64
		roleID    int64
		name      string
		email     string
		mobile    string
		hireDate  sql.NullTime
		birthday  sql.NullTime
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(
		&id,
		&empNo,
		&deptID,
		&roleID,
		&name,
		&email,
		&mobile,
		&hireDate,
		&birthday,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		ID:        id,
		EmpNo:     empNo,
		DeptID:    deptID,
		RoleID:    roleID,
		Name:      name,
		Email:     email,
		Mobile:    mobile,
		HireDate:  nullableDate(hireDate),
		Birthday:  nullableDate(birthday),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func scanStatus(row pgx.Row) (*employee.Status, error) {
	var (
		id        int64
		empID     int64
		value     string
		updatedAt time.Time
	)

	if err := row.Scan(&id, &empID, &value, &updatedAt); err != nil {
		return nil, err
	}

	return &employee.Status{
		ID:        id,
		EmpID:     empID,
		Value:     employee.StatusValue(value),
		UpdatedAt: updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case "uq_employee_email":
				return employee.ErrEmailAlreadyExists
			case "uq_employee_mobile":
				return employee.ErrMobileAlreadyExists
			case "uq_employee_emp_no":
				return employee.ErrEmpNoAlreadyExists
			case "uq_employee_status_emp":
				return employee.ErrStatusConflict
			default:
				return err
			}
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "fk_employee_status_emp" {
				return employee.ErrEmployeeNotFound
			}
			return err
		}
	}

	return err
}

func nullableDate(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}
