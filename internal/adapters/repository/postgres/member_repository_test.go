package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/colink-employee-service/internal/core/member"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestScanMember_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 10 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*int64)) = 1
		*(dest[1].(*string)) = "alice"
		*(dest[2].(*string)) = "pw123"
		*(dest[3].(*sql.NullInt64)) = sql.NullInt64{Int64: 7, Valid: true}
		*(dest[4].(*string)) = "employee"
		*(dest[5].(*sql.NullTime)) = sql.NullTime{}
		*(dest[6].(*int)) = 0
		*(dest[7].(*sql.NullTime)) = sql.NullTime{}
		*(dest[8].(*time.Time)) = createdAt
		*(dest[9].(*time.Time)) = createdAt
		return nil
	}}

	m, err := scanMember(row)
	if err != nil {
		t.Fatalf("scanMember returned error: %v", err)
	}

	if m.ID != 1 || m.LoginID != "alice" || m.Credential != "pw123" {
		t.Fatalf("unexpected member %+v", m)
	}

	if m.EmpID == nil || *m.EmpID != 7 {
		t.Fatalf("expected emp id 7, got %v", m.EmpID)
	}

	if m.LastLoginAt != nil || m.LockedUntil != nil {
		t.Fatalf("expected nil reserved timestamps, got %+v", m)
	}
}

func TestScanMember_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanMember(row)
	if !errors.Is(err, member.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestTranslateMemberPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "uq_member_login_id"}
	if !errors.Is(translateMemberPgError(pgErr), member.ErrLoginIDAlreadyExists) {
		t.Fatalf("expected login id exists error mapping")
	}

	otherErr := errors.New("random")
	if translateMemberPgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestMemberRepository_FindByLoginID_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewMemberRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT ` + memberColumns + `
          FROM member
         WHERE login_id = $1
         LIMIT 1
    `)

	mock.ExpectQuery(query).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindByLoginID(context.Background(), "ghost")
	if !errors.Is(err, member.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemberRepository_UpdateCredential(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewMemberRepository(mock)

	query := regexp.QuoteMeta(`
        UPDATE member
           SET password_hash = $1,
               updated_at = $2
         WHERE member_id = $3
    `)

	now := time.Now().UTC()
	mock.ExpectExec(query).
		WithArgs("$2a$10$hash", now, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateCredential(context.Background(), 1, "$2a$10$hash", now); err != nil {
		t.Fatalf("UpdateCredential returned error: %v", err)
	}

	mock.ExpectExec(query).
		WithArgs("$2a$10$hash", now, int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateCredential(context.Background(), 99, "$2a$10$hash", now); !errors.Is(err, member.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
