package member

import "time"

// Member はログインアカウントのエンティティです。
// Employee に紐づかないアカウント(外部ユーザーなど)も存在するため EmpID は nullable です。
type Member struct {
	ID          int64
	LoginID     string
	Credential  string
	EmpID       *int64
	UserType    string
	LastLoginAt *time.Time
	// FailedAttempts と LockedUntil はアカウントロックアウト用の予約フィールドです。
	// 現時点で参照・更新する処理はありません。
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal は認証に成功したアカウントの識別情報です。
type Principal struct {
	MemberID   int64
	LoginID    string
	UserType   string
	EmployeeID int64
}
