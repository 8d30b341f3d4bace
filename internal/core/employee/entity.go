package employee

import "time"

// StatusValue は在席状態の区分です。
type StatusValue string

const (
	StatusWorking       StatusValue = "WORKING"
	StatusAway          StatusValue = "AWAY"
	StatusOutOnBusiness StatusValue = "OUT_ON_BUSINESS"
	StatusOffWork       StatusValue = "OFF_WORK"
)

// StatusValues は定義順の全区分を返します。
func StatusValues() []StatusValue {
	return []StatusValue{StatusWorking, StatusAway, StatusOutOnBusiness, StatusOffWork}
}

// Status は社員の現在状態レコードです。
// emp_id ごとに高々 1 行で、履歴ではなく上書き(upsert)されます。
type Status struct {
	ID        int64
	EmpID     int64
	Value     StatusValue
	UpdatedAt time.Time
}

// Employee は社員エンティティです。
type Employee struct {
	ID        int64
	EmpNo     string
	DeptID    int64
	RoleID    int64
	Name      string
	Email     string
	Mobile    string
	HireDate  *time.Time
	Birthday  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Statuses  []*Status
}

// CurrentStatus は提示すべき現在状態を返します。
func (e *Employee) CurrentStatus() *Status {
	return CurrentStatus(e.Statuses)
}

// CurrentStatus は状態集合から最新の 1 件を選びます。空なら nil です。
// ストア側の一意制約により行は高々 1 件ですが、複数あった場合も
// updated_at が最新のもの、同時刻なら ID が大きいものを決定的に選びます。
func CurrentStatus(statuses []*Status) *Status {
	var latest *Status
	for _, st := range statuses {
		if st == nil {
			continue
		}
		if latest == nil {
			latest = st
			continue
		}
		if st.UpdatedAt.After(latest.UpdatedAt) {
			latest = st
			continue
		}
		if st.UpdatedAt.Equal(latest.UpdatedAt) && st.ID > latest.ID {
			latest = st
		}
	}
	return latest
}
