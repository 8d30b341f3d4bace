package member

import (
	"context"
	"time"
)

// Repository はアカウント永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, m *Member) (*Member, error)
	FindByLoginID(ctx context.Context, loginID string) (*Member, error)
	FindByEmployeeID(ctx context.Context, empID int64) (*Member, error)
	UpdateCredential(ctx context.Context, id int64, credential string, updatedAt time.Time) error
}
