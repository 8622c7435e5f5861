package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST FAKES
// Хранилища в памяти, повторяющие контракты репозиториев и кеша.
// ══════════════════════════════════════════════════════════════════════════════

type fakeUserRepo struct {
	users    map[string]*user.User
	students map[string][]*user.User
	err      error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*user.User),
		students: make(map[string][]*user.User),
	}
}

func (f *fakeUserRepo) addSupervisor(id, name string, studentsOf ...*user.User) {
	f.users[id] = &user.User{ID: id, DisplayName: name, Role: user.RoleSupervisor}
	for _, st := range studentsOf {
		f.users[st.ID] = st
		f.students[id] = append(f.students[id], st)
	}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetStudentsBySupervisor(_ context.Context, supervisorID string) ([]*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.students[supervisorID], nil
}

func (f *fakeUserRepo) ListSupervisors(_ context.Context) ([]*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var sups []*user.User
	for _, u := range f.users {
		if u.IsSupervisor() {
			sups = append(sups, u)
		}
	}
	return sups, nil
}

type fakeMilestoneRepo struct {
	byStudent map[string][]*milestone.Milestone
	err       error

	mu    sync.Mutex
	calls int
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{byStudent: make(map[string][]*milestone.Milestone)}
}

// callCount возвращает число обращений; снимки загружаются конкурентно.
func (f *fakeMilestoneRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeMilestoneRepo) FindByStudent(_ context.Context, studentID string, filter milestone.Filter) ([]*milestone.Milestone, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*milestone.Milestone
	for _, m := range f.byStudent[studentID] {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMilestoneRepo) FindBySupervisor(_ context.Context, _ string, filter milestone.Filter) ([]*milestone.Milestone, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*milestone.Milestone
	for _, ms := range f.byStudent {
		for _, m := range ms {
			if filter.Matches(m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

type fakeTemplateRepo struct {
	byID     map[string]*milestone.Template
	mostUsed *milestone.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{byID: make(map[string]*milestone.Template)}
}

func (f *fakeTemplateRepo) FindByID(_ context.Context, id string) (*milestone.Template, error) {
	tmpl, ok := f.byID[id]
	if !ok {
		return nil, shared.ErrTemplateNotFound
	}
	return tmpl, nil
}

func (f *fakeTemplateRepo) FindMostUsedActive(_ context.Context) (*milestone.Template, error) {
	if f.mostUsed == nil {
		return nil, shared.ErrTemplateNotFound
	}
	return f.mostUsed, nil
}

// fakeCache хранит JSON-значения в памяти и позволяет инъектировать
// ошибки чтения и записи.
type fakeCache struct {
	store  map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	raw, ok := f.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	f.sets++
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.store, k)
	}
	return nil
}

// Общие помощники тестовых сценариев.

func testDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func student(id, name string) *user.User {
	return &user.User{ID: id, DisplayName: name, Role: user.RoleStudent}
}

func doneMilestone(id, studentID string, completed time.Time) *milestone.Milestone {
	return &milestone.Milestone{
		ID:          id,
		StudentID:   studentID,
		Status:      milestone.StatusCompleted,
		Priority:    milestone.PriorityMedium,
		CreatedAt:   completed.AddDate(0, 0, -14),
		CompletedAt: &completed,
	}
}

func pendingMilestone(id, studentID string, status milestone.Status, due time.Time) *milestone.Milestone {
	return &milestone.Milestone{
		ID:        id,
		StudentID: studentID,
		Status:    status,
		Priority:  milestone.PriorityMedium,
		DueDate:   due,
	}
}
