package member

import (
	"context"
	"errors"
	"strings"
)

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

// Service は認証に関するユースケースをまとめます。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase は認証ユースケースの公開インターフェースです。
type UseCase interface {
	Authenticate(ctx context.Context, in AuthenticateInput) (*Principal, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// AuthenticateInput はログイン試行の入力です。
type AuthenticateInput struct {
	LoginID string
	Secret  string
}

// Authenticate はログイン ID と secret を照合し Principal を返します。
// ログイン ID 不明と secret 不一致はどちらも ErrInvalidCredentials になります。
// Employee に紐づかないアカウントは ErrNoLinkedEmployee です。
func (s *Service) Authenticate(ctx context.Context, in AuthenticateInput) (*Principal, error) {
	loginID := strings.TrimSpace(in.LoginID)
	if loginID == "" {
		return nil, ErrInvalidCredentials
	}

	var principal *Principal
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		m, err := s.repo.FindByLoginID(txCtx, loginID)
		if err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}

		if !Verify(in.Secret, m.Credential) {
			return ErrInvalidCredentials
		}

		// TODO: ロックアウトを実装する場合はここで FailedAttempts / LockedUntil を参照・更新する。

		if m.EmpID == nil {
			return ErrNoLinkedEmployee
		}

		principal = &Principal{
			MemberID:   m.ID,
			LoginID:    m.LoginID,
			UserType:   m.UserType,
			EmployeeID: *m.EmpID,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return principal, nil
}
