package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nhle/teamflow/internal/model"
)

// RecordedRequest is what the fake backend saw for one request.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	ContentType   string
	Authorization string
	RequestID     string
}

// Backend is an in-memory TeamFlow REST backend served by httptest. It
// implements the /api contract closely enough for client tests.
type Backend struct {
	Server *httptest.Server

	mu        gosync.Mutex
	nextID    int
	users     map[model.ID]model.User
	passwords map[string]string
	tasks     map[model.ID]model.Task
	projects  map[model.ID]model.Project
	meetings  map[model.ID]model.Meeting
	access    map[string]model.ID
	refresh   map[string]model.ID
	requests  []RecordedRequest
	gate      chan struct{}
}

// NewBackend starts a fake backend and closes it when the test completes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		users:     make(map[model.ID]model.User),
		passwords: make(map[string]string),
		tasks:     make(map[model.ID]model.Task),
		projects:  make(map[model.ID]model.Project),
		meetings:  make(map[model.ID]model.Meeting),
		access:    make(map[string]model.ID),
		refresh:   make(map[string]model.ID),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend root, without the /api prefix.
func (b *Backend) URL() string { return b.Server.URL }

// AddUser registers a user with a password and returns it.
func (b *Backend) AddUser(username, password string) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, password, username+"@example.com", "")
}

// IssueToken returns a valid access token for the user.
func (b *Backend) IssueToken(userID model.ID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := fmt.Sprintf("access-%s-%d", userID, b.id())
	b.access[token] = userID
	return token
}

// IssueRefreshToken returns a valid refresh token for the user.
func (b *Backend) IssueRefreshToken(userID model.ID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := fmt.Sprintf("refresh-%s-%d", userID, b.id())
	b.refresh[token] = userID
	return token
}

// RevokeTokens invalidates every issued access token.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]model.ID)
}

// Task returns the stored task with id.
func (b *Backend) Task(id model.ID) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	return t, ok
}

// SeedTask stores a task directly, bypassing the API.
func (b *Backend) SeedTask(t model.Task) model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.ID == "" {
		t.ID = b.newID()
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	b.tasks[t.ID] = t
	return t
}

// SeedProject stores a project directly, bypassing the API.
func (b *Backend) SeedProject(p model.Project) model.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.newID()
	}
	b.projects[p.ID] = p
	return p
}

// Requests returns a copy of every recorded request.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Hits counts recorded requests for method and path (query excluded).
func (b *Backend) Hits(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// HoldReads makes every GET block until the returned release func is
// called. Used to keep requests in flight.
func (b *Backend) HoldReads() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gate = gate
	b.mu.Unlock()

	var once gosync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.gate = nil
			b.mu.Unlock()
			close(gate)
		})
	}
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) newID() model.ID {
	return model.ID(strconv.Itoa(b.id()))
}

func (b *Backend) addUserLocked(username, password, email, fullName string) model.User {
	now := time.Now().UTC()
	u := model.User{
		ID:        b.newID(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.users[u.ID] = u
	b.passwords[username] = password
	return u
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.hold)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register", b.register)
		r.Post("/auth/refresh", b.refreshToken)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)

			r.Get("/auth/me", b.me)

			r.Get("/tasks", b.listTasks)
			r.Post("/tasks", b.createTask)
			r.Get("/tasks/my", b.myTasks)
			r.Get("/tasks/week/current", b.weekTasks)
			r.Get("/tasks/{id}", b.getTask)
			r.Put("/tasks/{id}", b.updateTask)
			r.Patch("/tasks/{id}", b.updateTask)
			r.Delete("/tasks/{id}", b.deleteTask)
			r.Post("/tasks/{id}/status", b.changeStatus)
			r.Post("/tasks/{id}/assign", b.assign)
			r.Post("/tasks/{id}/project", b.assignProject)

			r.Get("/projects", b.listProjects)
			r.Post("/projects", b.createProject)
			r.Patch("/projects/{id}", b.updateProject)
			r.Delete("/projects/{id}", b.deleteProject)

			r.Get("/meetings", b.listMeetings)
			r.Post("/meetings", b.createMeeting)
			r.Patch("/meetings/{id}", b.updateMeeting)
			r.Delete("/meetings/{id}", b.deleteMeeting)

			r.Get("/users", b.listUsers)
			r.Get("/users/{id}", b.getUser)

			r.Get("/stats", b.stats)
		})
	})
	return r
}

// --- middleware ---

type userKey struct{}

func withUser(r *http.Request, id model.ID) context.Context {
	return context.WithValue(r.Context(), userKey{}, id)
}

func currentUser(r *http.Request) model.ID {
	id, _ := r.Context().Value(userKey{}).(model.ID)
	return id
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) hold(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			b.mu.Lock()
			gate := b.gate
			b.mu.Unlock()
			if gate != nil {
				select {
				case <-gate:
				case <-r.Context().Done():
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		b.mu.Lock()
		userID, ok := b.access[token]
		b.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r, userID)))
	})
}

// --- auth ---

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	b.mu.Lock()
	stored, ok := b.passwords[username]
	var userID model.ID
	for id, u := range b.users {
		if u.Username == username {
			userID = id
		}
	}
	b.mu.Unlock()

	if !ok || stored != password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	writeJSON(w, http.StatusOK, model.TokenPair{
		AccessToken:  b.IssueToken(userID),
		RefreshToken: b.IssueRefreshToken(userID),
		TokenType:    "bearer",
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if !decode(w, r, &reg) {
		return
	}
	if reg.Username == "" || reg.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.passwords[reg.Username]; exists {
		writeDetail(w, http.StatusConflict, "Username already registered")
		return
	}
	writeJSON(w, http.StatusCreated, b.addUserLocked(reg.Username, reg.Password, reg.Email, reg.FullName))
}

func (b *Backend) refreshToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decode(w, r, &body) {
		return
	}

	b.mu.Lock()
	userID, ok := b.refresh[body.RefreshToken]
	if ok {
		delete(b.refresh, body.RefreshToken)
	}
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, model.TokenPair{
		AccessToken:  b.IssueToken(userID),
		RefreshToken: b.IssueRefreshToken(userID),
		TokenType:    "bearer",
	})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u, ok := b.users[currentUser(r)]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// --- tasks ---

func (b *Backend) sortedTasks(keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(string(out[i].ID))
		c, _ := strconv.Atoi(string(out[j].ID))
		return a < c
	})
	return out
}

func statusParam(w http.ResponseWriter, r *http.Request) (model.TaskStatus, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", true
	}
	st, err := model.ParseStatus(raw)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return "", false
	}
	return st, true
}

func (b *Backend) listTasks(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}
	assignee := model.ID(r.URL.Query().Get("assignee_id"))

	b.mu.Lock()
	tasks := b.sortedTasks(func(t model.Task) bool {
		if status != "" && t.Status != status {
			return false
		}
		if assignee != "" && (t.AssigneeID == nil || *t.AssigneeID != assignee) {
			return false
		}
		return true
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (b *Backend) myTasks(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}
	me := currentUser(r)

	b.mu.Lock()
	tasks := b.sortedTasks(func(t model.Task) bool {
		mine := t.CreatorID == me || (t.AssigneeID != nil && *t.AssigneeID == me)
		return mine && (status == "" || t.Status == status)
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (b *Backend) weekTasks(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	end := now.AddDate(0, 0, 7)

	b.mu.Lock()
	tasks := b.sortedTasks(func(t model.Task) bool {
		return t.DueDate != nil && !t.DueDate.Before(now.AddDate(0, 0, -1)) && t.DueDate.Before(end)
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (b *Backend) getTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	t, ok := b.tasks[pathID(r)]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) createTask(w http.ResponseWriter, r *http.Request) {
	var in model.TaskInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title must not be empty")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if msg := b.checkRefsLocked(in.AssigneeID, in.ProjectID); msg != "" {
		writeDetail(w, http.StatusNotFound, msg)
		return
	}

	now := time.Now().UTC()
	t := model.Task{
		ID:          b.newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatorID:   currentUser(r),
		AssigneeID:  in.AssigneeID,
		ProjectID:   in.ProjectID,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	b.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, t)
}

// updateTask serves both PUT and PATCH: only fields present in the body
// are applied.
func (b *Backend) updateTask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       *string             `json:"title"`
		Description *string             `json:"description"`
		Status      *model.TaskStatus   `json:"status"`
		Priority    *model.TaskPriority `json:"priority"`
		AssigneeID  *model.ID           `json:"assignee_id"`
		ProjectID   *model.ID           `json:"project_id"`
		DueDate     *time.Time          `json:"due_date"`
	}
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[pathID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "title must not be empty")
			return
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.AssigneeID != nil {
		t.AssigneeID = in.AssigneeID
	}
	if in.ProjectID != nil {
		t.ProjectID = in.ProjectID
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	b.tasks[t.ID] = t
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) deleteTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.tasks[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	delete(b.tasks, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.TaskStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	b.mutateTask(w, r, func(t *model.Task) string {
		t.Status = body.Status
		return ""
	})
}

func (b *Backend) assign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssigneeID *model.ID `json:"assignee_id"`
	}
	if !decode(w, r, &body) {
		return
	}
	b.mutateTask(w, r, func(t *model.Task) string {
		if msg := b.checkRefsLocked(body.AssigneeID, nil); msg != "" {
			return msg
		}
		t.AssigneeID = body.AssigneeID
		return ""
	})
}

func (b *Backend) assignProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID *model.ID `json:"project_id"`
	}
	if !decode(w, r, &body) {
		return
	}
	b.mutateTask(w, r, func(t *model.Task) string {
		if msg := b.checkRefsLocked(nil, body.ProjectID); msg != "" {
			return msg
		}
		t.ProjectID = body.ProjectID
		return ""
	})
}

// mutateTask applies fn to the addressed task; fn returns a not-found
// message when a reference does not resolve.
func (b *Backend) mutateTask(w http.ResponseWriter, r *http.Request, fn func(*model.Task) string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[pathID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return
	}
	if msg := fn(&t); msg != "" {
		writeDetail(w, http.StatusNotFound, msg)
		return
	}
	t.UpdatedAt = time.Now().UTC()
	b.tasks[t.ID] = t
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) checkRefsLocked(assignee, project *model.ID) string {
	if assignee != nil {
		if _, ok := b.users[*assignee]; !ok {
			return "User not found"
		}
	}
	if project != nil {
		if _, ok := b.projects[*project]; !ok {
			return "Project not found"
		}
	}
	return ""
}

// --- projects ---

func (b *Backend) listProjects(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]model.Project, 0, len(b.projects))
	for _, p := range b.projects {
		out = append(out, p)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name must not be empty")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := model.Project{ID: b.newID(), Name: in.Name, Description: in.Description, Emoji: in.Emoji, IsActive: true}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	b.projects[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) updateProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[pathID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	p.Description = in.Description
	p.Emoji = in.Emoji
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	b.projects[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) deleteProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.projects[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	delete(b.projects, id)
	for tid, t := range b.tasks {
		if t.ProjectID != nil && *t.ProjectID == id {
			t.ProjectID = nil
			b.tasks[tid] = t
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- meetings ---

func (b *Backend) listMeetings(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]model.Meeting, 0, len(b.meetings))
	for _, m := range b.meetings {
		out = append(out, m)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].MeetingDate.After(out[j].MeetingDate) })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createMeeting(w http.ResponseWriter, r *http.Request) {
	var in model.MeetingInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Summary) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "summary must not be empty")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m := model.Meeting{ID: b.newID(), Summary: in.Summary, MeetingDate: in.MeetingDate, CreatedAt: time.Now().UTC()}
	b.meetings[m.ID] = m
	writeJSON(w, http.StatusCreated, m)
}

func (b *Backend) updateMeeting(w http.ResponseWriter, r *http.Request) {
	var in model.MeetingInput
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.meetings[pathID(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if in.Summary != "" {
		m.Summary = in.Summary
	}
	if !in.MeetingDate.IsZero() {
		m.MeetingDate = in.MeetingDate
	}
	b.meetings[m.ID] = m
	writeJSON(w, http.StatusOK, m)
}

func (b *Backend) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.meetings[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Meeting not found")
		return
	}
	delete(b.meetings, id)
	w.WriteHeader(http.StatusNoContent)
}

// --- users & stats ---

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]model.User, 0, len(b.users))
	for _, u := range b.users {
		out = append(out, u)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u, ok := b.users[pathID(r)]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) stats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	var s model.Stats
	for _, t := range b.tasks {
		s.Total++
		switch t.Status {
		case model.StatusTodo:
			s.Todo++
		case model.StatusDoing:
			s.Doing++
		case model.StatusDone:
			s.Done++
		case model.StatusBlocked:
			s.Blocked++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, s)
}

// --- helpers ---

func pathID(r *http.Request) model.ID {
	return model.ID(chi.URLParam(r, "id"))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
