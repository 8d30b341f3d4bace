package employee

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/ogurasousui/colink-employee-service/internal/core/member"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	employees   map[int64]*Employee
	statuses    map[int64]*Status // keyed on emp_id
	statusSeq   int64
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		employees: make(map[int64]*Employee),
		statuses:  make(map[int64]*Status),
	}
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := *e
	clone.Statuses = nil
	if st, ok := r.statuses[id]; ok {
		stCopy := *st
		clone.Statuses = []*Status{&stCopy}
	}
	return &clone, nil
}

func (r *fakeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	existing, ok := r.employees[e.ID]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	r.updateCalls++
	*existing = *e
	clone := *existing
	return &clone, nil
}

func (r *fakeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	return nil, "", nil
}

func (r *fakeRepo) FindStatusByEmployee(_ context.Context, empID int64) (*Status, error) {
	st, ok := r.statuses[empID]
	if !ok {
		return nil, ErrStatusNotFound
	}
	clone := *st
	return &clone, nil
}

func (r *fakeRepo) InsertStatus(_ context.Context, st *Status) (*Status, error) {
	if _, ok := r.statuses[st.EmpID]; ok {
		return nil, ErrStatusConflict
	}
	r.statusSeq++
	clone := *st
	clone.ID = r.statusSeq
	r.statuses[st.EmpID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, st *Status) (*Status, error) {
	existing, ok := r.statuses[st.EmpID]
	if !ok || existing.ID != st.ID {
		return nil, ErrStatusNotFound
	}
	*existing = *st
	clone := *existing
	return &clone, nil
}

func (r *fakeRepo) seedEmployee(id int64, name, email, mobile string) *Employee {
	e := &Employee{
		ID:     id,
		EmpNo:  "E" + strconv.FormatInt(id, 10),
		DeptID: 1,
		RoleID: 1,
		Name:   name,
		Email:  email,
		Mobile: mobile,
	}
	r.employees[id] = e
	return e
}

type fakeMemberRepo struct {
	members map[int64]*member.Member // keyed on emp_id
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[int64]*member.Member)}
}

func (r *fakeMemberRepo) Create(_ context.Context, m *member.Member) (*member.Member, error) {
	if m.EmpID != nil {
		r.members[*m.EmpID] = m
	}
	return m, nil
}

func (r *fakeMemberRepo) FindByLoginID(_ context.Context, loginID string) (*member.Member, error) {
	for _, m := range r.members {
		if m.LoginID == loginID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, member.ErrMemberNotFound
}

func (r *fakeMemberRepo) FindByEmployeeID(_ context.Context, empID int64) (*member.Member, error) {
	m, ok := r.members[empID]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMemberRepo) UpdateCredential(_ context.Context, id int64, credential string, updatedAt time.Time) error {
	for _, m := range r.members {
		if m.ID == id {
			m.Credential = credential
			m.UpdatedAt = updatedAt
			return nil
		}
	}
	return member.ErrMemberNotFound
}

func ptr[T any](v T) *T {
	return &v
}

func TestService_UpdateProfile_StatusUpsertCreatesThenMutates(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")
	svc := NewService(repo, newFakeMemberRepo(), clk, nil)

	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{EmpID: 7, Status: ptr(StatusAway)})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	first := updated.CurrentStatus()
	if first == nil || first.Value != StatusAway {
		t.Fatalf("expected AWAY status, got %+v", first)
	}
	if !first.UpdatedAt.Equal(clk.now) {
		t.Errorf("expected status timestamp from clock, got %v", first.UpdatedAt)
	}
	if len(repo.statuses) != 1 {
		t.Fatalf("expected exactly one status row, got %d", len(repo.statuses))
	}

	clk.now = clk.now.Add(time.Minute)

	updated, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{EmpID: 7, Status: ptr(StatusWorking)})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	second := updated.CurrentStatus()
	if second == nil || second.Value != StatusWorking {
		t.Fatalf("expected WORKING status, got %+v", second)
	}
	if len(repo.statuses) != 1 {
		t.Fatalf("status upsert must not append rows, got %d", len(repo.statuses))
	}
	if second.ID != first.ID {
		t.Errorf("expected the same status row mutated in place, ids %d and %d", first.ID, second.ID)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("expected a strictly later timestamp, got %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestService_UpdateProfile_NoFieldsIsCommittedNoOp(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seeded := repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")
	svc := NewService(repo, newFakeMemberRepo(), nil, nil)

	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{EmpID: 7})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if repo.updateCalls != 0 {
		t.Errorf("expected no employee write, got %d", repo.updateCalls)
	}
	if updated.Name != seeded.Name || updated.Email != seeded.Email || updated.Mobile != seeded.Mobile {
		t.Errorf("expected unchanged employee, got %+v", updated)
	}
	if !updated.UpdatedAt.Equal(seeded.UpdatedAt) {
		t.Errorf("no-op must not bump updated_at, got %v", updated.UpdatedAt)
	}
}

func TestService_UpdateProfile_PartialFields(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")
	svc := NewService(repo, newFakeMemberRepo(), clk, nil)

	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		EmpID: 7,
		Email: ptr(" TARO.NEW@Example.com "),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if updated.Email != "taro.new@example.com" {
		t.Errorf("expected normalized email, got %s", updated.Email)
	}
	if updated.Name != "Taro" || updated.Mobile != "090-1111-2222" {
		t.Errorf("unset fields must stay untouched, got %+v", updated)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Errorf("expected updated_at from clock, got %v", updated.UpdatedAt)
	}
}

func TestService_UpdateProfile_EmployeeNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, newFakeMemberRepo(), nil, nil)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{EmpID: 42, Status: ptr(StatusAway)})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if len(repo.statuses) != 0 {
		t.Fatalf("failed update must not write status rows, got %d", len(repo.statuses))
	}
	if repo.updateCalls != 0 {
		t.Fatalf("failed update must not write employee rows, got %d", repo.updateCalls)
	}
}

func TestService_UpdateProfile_RotatesCredentialHashed(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")

	members := newFakeMemberRepo()
	empID := int64(7)
	members.members[7] = &member.Member{ID: 1, LoginID: "taro", Credential: "legacy-pw", EmpID: &empID}

	svc := NewService(repo, members, clk, nil)

	if _, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{EmpID: 7, NewSecret: ptr("new-secret-1")}); err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	stored := members.members[7].Credential
	if stored == "new-secret-1" {
		t.Fatalf("rotated credential must never be stored in plaintext")
	}
	if !member.Verify("new-secret-1", stored) {
		t.Fatalf("rotated credential must verify against the new secret")
	}
	if member.Verify("legacy-pw", stored) {
		t.Fatalf("old secret must no longer verify")
	}
	if !members.members[7].UpdatedAt.Equal(clk.now) {
		t.Errorf("expected member updated_at from clock, got %v", members.members[7].UpdatedAt)
	}
}

func TestService_UpdateProfile_SecretWithoutMember(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")
	svc := NewService(repo, newFakeMemberRepo(), nil, nil)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{EmpID: 7, NewSecret: ptr("new-secret-1")})
	if !errors.Is(err, member.ErrMemberNotFound) {
		t.Fatalf("expected member.ErrMemberNotFound, got %v", err)
	}
}

func TestService_UpdateProfile_Validation(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")
	svc := NewService(repo, newFakeMemberRepo(), nil, nil)

	cases := []struct {
		name string
		in   UpdateProfileInput
		want error
	}{
		{name: "invalid id", in: UpdateProfileInput{EmpID: 0}, want: ErrInvalidID},
		{name: "blank name", in: UpdateProfileInput{EmpID: 7, Name: ptr("   ")}, want: ErrInvalidName},
		{name: "broken email", in: UpdateProfileInput{EmpID: 7, Email: ptr("not-an-email")}, want: ErrInvalidEmail},
		{name: "broken mobile", in: UpdateProfileInput{EmpID: 7, Mobile: ptr("abc")}, want: ErrInvalidMobile},
		{name: "unknown status", in: UpdateProfileInput{EmpID: 7, Status: ptr(StatusValue("NAPPING"))}, want: ErrInvalidStatus},
		{name: "short password", in: UpdateProfileInput{EmpID: 7, NewSecret: ptr("short")}, want: ErrInvalidPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.UpdateProfile(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

type recordingTxManager struct {
	readWrite int
	readOnly  int
}

func (m *recordingTxManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	m.readOnly++
	return fn(ctx)
}

func (m *recordingTxManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	m.readWrite++
	return fn(ctx)
}

func TestService_UpdateProfile_RunsInSingleReadWriteTransaction(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")

	members := newFakeMemberRepo()
	empID := int64(7)
	members.members[7] = &member.Member{ID: 1, LoginID: "taro", Credential: "legacy-pw", EmpID: &empID}

	tx := &recordingTxManager{}
	svc := NewService(repo, members, nil, tx)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		EmpID:     7,
		Name:      ptr("Taro Updated"),
		Status:    ptr(StatusOutOnBusiness),
		NewSecret: ptr("new-secret-1"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if tx.readWrite != 1 {
		t.Fatalf("expected exactly one read-write transaction, got %d", tx.readWrite)
	}
	if tx.readOnly != 0 {
		t.Fatalf("expected no read-only transactions, got %d", tx.readOnly)
	}
}

func TestService_GetEmployee_InvalidID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), newFakeMemberRepo(), nil, nil)

	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: 0}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_GetEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.seedEmployee(7, "Taro", "taro@example.com", "090-1111-2222")
	svc := NewService(repo, newFakeMemberRepo(), nil, nil)

	found, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: 7})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}

	if found.ID != 7 {
		t.Fatalf("expected employee 7, got %d", found.ID)
	}
}

func TestService_ListEmployees_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), newFakeMemberRepo(), nil, nil)

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
