package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/colink-employee-service/internal/core/employee"
	"github.com/ogurasousui/colink-employee-service/internal/core/member"
	pgdb "github.com/ogurasousui/colink-employee-service/internal/platform/db/postgres"
)

const memberColumns = `member_id, login_id, password_hash, emp_id, user_type, last_login_at, failed_attempts, locked_until, created_at, updated_at`

// MemberRepository は PostgreSQL を利用したアカウント永続化の実装です。
type MemberRepository struct {
	pool pgdb.Queryer
}

// NewMemberRepository は MemberRepository を生成します。
func NewMemberRepository(pool pgdb.Queryer) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// Create はアカウントを新規作成します。
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) (*member.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO member (login_id, password_hash, emp_id, user_type, failed_attempts, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+memberColumns+`
    `,
		m.LoginID,
		m.Credential,
		nullableInt64(m.EmpID),
		m.UserType,
		m.FailedAttempts,
		m.CreatedAt,
		m.UpdatedAt,
	)

	created, err := scanMember(row)
	if err != nil {
		return nil, translateMemberPgError(err)
	}
	return created, nil
}

// FindByLoginID はログイン ID でアカウントを取得します。
func (r *MemberRepository) FindByLoginID(ctx context.Context, loginID string) (*member.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+memberColumns+`
          FROM member
         WHERE login_id = $1
         LIMIT 1
    `, loginID)

	found, err := scanMember(row)
	if err != nil {
		return nil, translateMemberPgError(err)
	}
	return found, nil
}

// FindByEmployeeID は社員 ID でアカウントを取得します。
func (r *MemberRepository) FindByEmployeeID(ctx context.Context, empID int64) (*member.Member, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+memberColumns+`
          FROM member
         WHERE emp_id = $1
         LIMIT 1
    `, empID)

	found, err := scanMember(row)
	if err != nil {
		return nil, translateMemberPgError(err)
	}
	return found, nil
}

// UpdateCredential は保存済み認証情報を差し替えます。
func (r *MemberRepository) UpdateCredential(ctx context.Context, id int64, credential string, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE member
           SET password_hash = $1,
               updated_at = $2
         WHERE member_id = $3
    `, credential, updatedAt, id)
	if err != nil {
		return translateMemberPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return member.ErrMemberNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*member.Member, error) {
	var (
		id             int64
		loginID        string
		credential     string
		empID          sql.NullInt64
		userType       string
		lastLoginAt    sql.NullTime
		failedAttempts int
		lockedUntil    sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
	)

	if err := row.Scan(
		&id,
		&loginID,
		&credential,
		&empID,
		&userType,
		&lastLoginAt,
		&failedAttempts,
		&lockedUntil,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrMemberNotFound
		}
		return nil, err
	}

	m := &member.Member{
		ID:             id,
		LoginID:        loginID,
		Credential:     credential,
		UserType:       userType,
		FailedAttempts: failedAttempts,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}

	if empID.Valid {
		v := empID.Int64
		m.EmpID = &v
	}
	if lastLoginAt.Valid {
		t := lastLoginAt.Time.UTC()
		m.LastLoginAt = &t
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time.UTC()
		m.LockedUntil = &t
	}

	return m, nil
}

func translateMemberPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return member.ErrMemberNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == "uq_member_login_id" {
				return member.ErrLoginIDAlreadyExists
			}
			return err
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "fk_member_emp" {
				return employee.ErrEmployeeNotFound
			}
			return err
		}
	}

	return err
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}
