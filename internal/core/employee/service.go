package employee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ogurasousui/colink-employee-service/internal/core/member"
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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	minPasswordLength   = 8
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9][0-9-]{6,18}[0-9]$`)

// Service は社員プロフィールに関するユースケースをまとめます。
type Service struct {
	repo    Repository
	members member.Repository
	clock   Clock
	tx      TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, members member.Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, members: members, clock: clock, tx: tx}
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID int64
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize  int
	PageToken string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// UpdateProfileInput は本人プロフィール更新の入力です。
// nil のフィールドは変更されません(部分更新)。
type UpdateProfileInput struct {
	EmpID     int64
	Name      *string
	Email     *string
	Mobile    *string
	Status    *StatusValue
	NewSecret *string
}

// UpdateProfile はプロフィール・現在状態・認証情報を 1 つのトランザクションで更新します。
// いずれかの手順が失敗した場合、そのトランザクション内の書き込みはすべて取り消されます。
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Employee, error) {
	if in.EmpID <= 0 {
		return nil, fmt.Errorf("emp_id: %w", ErrInvalidID)
	}

	var namePtr, emailPtr, mobilePtr *string

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		namePtr = &name
	}

	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		emailPtr = &email
	}

	if in.Mobile != nil {
		mobile := strings.TrimSpace(*in.Mobile)
		if !mobilePattern.MatchString(mobile) {
			return nil, ErrInvalidMobile
		}
		mobilePtr = &mobile
	}

	if in.Status != nil && !isValidStatusValue(*in.Status) {
		return nil, ErrInvalidStatus
	}

	if in.NewSecret != nil && utf8.RuneCountInString(*in.NewSecret) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.EmpID)
		if err != nil {
			return err
		}

		if namePtr != nil || emailPtr != nil || mobilePtr != nil {
			if namePtr != nil {
				existing.Name = *namePtr
			}
			if emailPtr != nil {
				existing.Email = *emailPtr
			}
			if mobilePtr != nil {
				existing.Mobile = *mobilePtr
			}
			existing.UpdatedAt = s.clock.Now()

			if _, err := s.repo.Update(txCtx, existing); err != nil {
				return err
			}
		}

		if in.Status != nil {
			if err := s.upsertStatus(txCtx, in.EmpID, *in.Status); err != nil {
				return err
			}
		}

		if in.NewSecret != nil {
			if err := s.rotateCredential(txCtx, in.EmpID, *in.NewSecret); err != nil {
				return err
			}
		}

		reloaded, err := s.repo.FindByID(txCtx, in.EmpID)
		if err != nil {
			return err
		}

		updated = reloaded
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// upsertStatus は emp_id をキーに現在状態を上書きし、無ければ新規作成します。
// 状態行は追記されず、社員ごとに常に高々 1 行です。
func (s *Service) upsertStatus(ctx context.Context, empID int64, value StatusValue) error {
	now := s.clock.Now()

	existing, err := s.repo.FindStatusByEmployee(ctx, empID)
	if err != nil {
		if !errors.Is(err, ErrStatusNotFound) {
			return err
		}
		_, err := s.repo.InsertStatus(ctx, &Status{EmpID: empID, Value: value, UpdatedAt: now})
		return err
	}

	existing.Value = value
	existing.UpdatedAt = now
	_, err = s.repo.UpdateStatus(ctx, existing)
	return err
}

// rotateCredential は社員に紐づくアカウントの認証情報をハッシュ化して保存します。
// 平文のまま保存する経路は存在しません。
func (s *Service) rotateCredential(ctx context.Context, empID int64, secret string) error {
	m, err := s.members.FindByEmployeeID(ctx, empID)
	if err != nil {
		return err
	}

	hashed, err := member.HashSecret(secret)
	if err != nil {
		return err
	}

	return s.members.UpdateCredential(ctx, m.ID, hashed, s.clock.Now())
}

// GetEmployee は ID で社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を emp_id 昇順で取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{Limit: limit, Offset: offset})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func isValidStatusValue(value StatusValue) bool {
	switch value {
	case StatusWorking, StatusAway, StatusOutOnBusiness, StatusOffWork:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
