package employee

import "context"

// Repository は社員と現在状態の永続化の抽象です。
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Employee, error)
	Update(ctx context.Context, e *Employee) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
	FindStatusByEmployee(ctx context.Context, empID int64) (*Status, error)
	InsertStatus(ctx context.Context, st *Status) (*Status, error)
	UpdateStatus(ctx context.Context, st *Status) (*Status, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Limit  int
	Offset int
}
