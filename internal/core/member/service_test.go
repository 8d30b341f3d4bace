package member

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	members map[string]*Member
	seq     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{members: make(map[string]*Member)}
}

func (r *fakeRepo) Create(_ context.Context, m *Member) (*Member, error) {
	if _, ok := r.members[m.LoginID]; ok {
		return nil, ErrLoginIDAlreadyExists
	}
	r.seq++
	copy := *m
	copy.ID = r.seq
	r.members[copy.LoginID] = &copy
	return cloneMember(&copy), nil
}

func (r *fakeRepo) FindByLoginID(_ context.Context, loginID string) (*Member, error) {
	m, ok := r.members[loginID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return cloneMember(m), nil
}

func (r *fakeRepo) FindByEmployeeID(_ context.Context, empID int64) (*Member, error) {
	for _, m := range r.members {
		if m.EmpID != nil && *m.EmpID == empID {
			return cloneMember(m), nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *fakeRepo) UpdateCredential(_ context.Context, id int64, credential string, updatedAt time.Time) error {
	for _, m := range r.members {
		if m.ID == id {
			m.Credential = credential
			m.UpdatedAt = updatedAt
			return nil
		}
	}
	return ErrMemberNotFound
}

func cloneMember(m *Member) *Member {
	if m == nil {
		return nil
	}
	copy := *m
	return &copy
}

func seedMember(t *testing.T, repo *fakeRepo, loginID, credential string, empID *int64) *Member {
	t.Helper()

	created, err := repo.Create(context.Background(), &Member{
		LoginID:    loginID,
		Credential: credential,
		EmpID:      empID,
		UserType:   "employee",
	})
	if err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	return created
}

func TestService_Authenticate_LegacyPlaintextSuccess(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	empID := int64(7)
	seedMember(t, repo, "alice", "pw123", &empID)

	svc := NewService(repo, nil)

	principal, err := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "alice", Secret: "pw123"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	if principal.LoginID != "alice" {
		t.Errorf("expected login id alice, got %s", principal.LoginID)
	}

	if principal.EmployeeID != 7 {
		t.Errorf("expected employee id 7, got %d", principal.EmployeeID)
	}
}

func TestService_Authenticate_HashedSuccess(t *testing.T) {
	t.Parallel()

	hashed, err := HashSecret("pw123")
	if err != nil {
		t.Fatalf("HashSecret returned error: %v", err)
	}

	repo := newFakeRepo()
	empID := int64(3)
	seedMember(t, repo, "bob", hashed, &empID)

	svc := NewService(repo, nil)

	if _, err := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "bob", Secret: "pw123"}); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
}

func TestService_Authenticate_WrongSecretAndUnknownLoginAreIndistinguishable(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	empID := int64(1)
	seedMember(t, repo, "alice", "pw123", &empID)

	svc := NewService(repo, nil)

	_, wrongSecretErr := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "alice", Secret: "wrong"})
	if !errors.Is(wrongSecretErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong secret, got %v", wrongSecretErr)
	}

	_, unknownLoginErr := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "mallory", Secret: "pw123"})
	if !errors.Is(unknownLoginErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown login, got %v", unknownLoginErr)
	}
}

func TestService_Authenticate_NoLinkedEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedMember(t, repo, "external", "pw123", nil)

	svc := NewService(repo, nil)

	_, err := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "external", Secret: "pw123"})
	if !errors.Is(err, ErrNoLinkedEmployee) {
		t.Fatalf("expected ErrNoLinkedEmployee, got %v", err)
	}
}

func TestService_Authenticate_EmptyLoginID(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "   ", Secret: "pw123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

type failingRepo struct {
	fakeRepo
	err error
}

func (r *failingRepo) FindByLoginID(context.Context, string) (*Member, error) {
	return nil, r.err
}

func TestService_Authenticate_StorageErrorPassesThrough(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("connection reset")
	svc := NewService(&failingRepo{err: storageErr}, nil)

	_, err := svc.Authenticate(context.Background(), AuthenticateInput{LoginID: "alice", Secret: "pw123"})
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error to pass through, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("storage errors must not be masked as credential errors")
	}
}
