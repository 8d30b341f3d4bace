package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/colink-employee-service/internal/core/directory"
	"github.com/ogurasousui/colink-employee-service/internal/core/employee"
	"github.com/ogurasousui/colink-employee-service/internal/core/member"
)

// Handler は HTTP ルーティングとユースケースの橋渡しをします。
type Handler struct {
	members     member.UseCase
	employees   employee.UseCase
	directories directory.UseCase
}

// New はルーティング済みの http.Handler を構築します。
func New(members member.UseCase, employees employee.UseCase, directories directory.UseCase, corsOrigins []string) http.Handler {
	h := &Handler{members: members, employees: employees, directories: directories}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(corsOrigins))

	r.Get("/health", h.health)
	r.Get("/employee-status-options", h.statusOptions)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireBasicAuth)
		r.Get("/employees/me", h.getCurrentEmployee)
		r.Put("/employees/me", h.updateCurrentEmployee)
		r.Get("/employees", h.listEmployees)
		r.Get("/departments", h.listDepartments)
		r.Post("/departments", h.createDepartment)
		r.Get("/roles", h.listRoles)
		r.Post("/roles", h.createRole)
	})

	return r
}

type statusResponse struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type employeeResponse struct {
	EmpID  int64           `json:"emp_id"`
	EmpNo  string          `json:"emp_no"`
	DeptID int64           `json:"dept_id"`
	RoleID int64           `json:"role_id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Mobile string          `json:"mobile"`
	Status *statusResponse `json:"status"`
}

type employeeUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Mobile   *string `json:"mobile"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

type listEmployeesResponse struct {
	Employees     []employeeResponse `json:"employees"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	resp := employeeResponse{
		EmpID:  e.ID,
		EmpNo:  e.EmpNo,
		DeptID: e.DeptID,
		RoleID: e.RoleID,
		Name:   e.Name,
		Email:  e.Email,
		Mobile: e.Mobile,
	}

	if st := e.CurrentStatus(); st != nil {
		resp.Status = &statusResponse{Status: string(st.Value), UpdatedAt: st.UpdatedAt}
	}

	return resp
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// statusOptions はフロントの選択肢用に状態区分の一覧を返します。
func (h *Handler) statusOptions(w http.ResponseWriter, _ *http.Request) {
	type option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	values := employee.StatusValues()
	options := make([]option, 0, len(values))
	for _, v := range values {
		options = append(options, option{Value: string(v), Label: string(v)})
	}

	writeJSON(w, map[string][]option{"options": options})
}

// getCurrentEmployee はログイン中の社員本人の情報を返します。
func (h *Handler) getCurrentEmployee(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	found, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: principal.EmployeeID})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, toEmployeeResponse(found))
}

// updateCurrentEmployee はログイン中の社員本人のプロフィールのみ更新を許可します。
func (h *Handler) updateCurrentEmployee(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	var req employeeUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "INVALID_ARGUMENT", http.StatusBadRequest)
		return
	}

	in := employee.UpdateProfileInput{
		EmpID:     principal.EmployeeID,
		Name:      req.Name,
		Email:     req.Email,
		Mobile:    req.Mobile,
		NewSecret: req.Password,
	}
	if req.Status != nil {
		value := employee.StatusValue(*req.Status)
		in.Status = &value
	}

	updated, err := h.employees.UpdateProfile(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, toEmployeeResponse(updated))
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	pageSize := 0
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeDomainError(w, r, employee.ErrInvalidPageSize)
			return
		}
		pageSize = parsed
	}

	result, err := h.employees.ListEmployees(r.Context(), employee.ListEmployeesInput{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := listEmployeesResponse{
		Employees:     make([]employeeResponse, 0, len(result.Employees)),
		NextPageToken: result.NextPageToken,
	}
	for _, e := range result.Employees {
		resp.Employees = append(resp.Employees, toEmployeeResponse(e))
	}

	writeJSON(w, resp)
}

type departmentResponse struct {
	DeptID int64  `json:"dept_id"`
	Name   string `json:"name"`
}

type createDepartmentRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.directories.ListDepartments(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]departmentResponse, 0, len(departments))
	for _, d := range departments {
		resp = append(resp, departmentResponse{DeptID: d.ID, Name: d.Name})
	}

	writeJSON(w, map[string][]departmentResponse{"departments": resp})
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "INVALID_ARGUMENT", http.StatusBadRequest)
		return
	}

	created, err := h.directories.CreateDepartment(r.Context(), directory.CreateDepartmentInput{Name: req.Name})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(departmentResponse{DeptID: created.ID, Name: created.Name})
}

type roleResponse struct {
	RoleID int64  `json:"role_id"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
}

type createRoleRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.directories.ListRoles(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, roleResponse{RoleID: role.ID, Name: role.Name, Level: role.Level})
	}

	writeJSON(w, map[string][]roleResponse{"roles": resp})
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "INVALID_ARGUMENT", http.StatusBadRequest)
		return
	}

	created, err := h.directories.CreateRole(r.Context(), directory.CreateRoleInput{Name: req.Name, Level: req.Level})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(roleResponse{RoleID: created.ID, Name: created.Name, Level: created.Level})
}
