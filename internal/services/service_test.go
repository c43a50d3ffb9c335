package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/monocle-dev/taskcalendar/internal/models"
	"github.com/monocle-dev/taskcalendar/internal/testutil"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"gorm.io/gorm"
)

type notification struct {
	userID   uint
	resource string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (r *recordingNotifier) Notify(userID uint, resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{userID: userID, resource: resource})
}

func (r *recordingNotifier) Events() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.events...)
}

type testEnv struct {
	service  *Service
	db       *gorm.DB
	clock    *testutil.Clock
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testutil.Clock{Now: time.Date(2026, 1, 23, 12, 0, 0, 0, time.UTC)}
	conn := testutil.NewDB(t)
	notifier := &recordingNotifier{}

	service := New(Options{
		DB:        conn,
		Tokens:    testutil.NewTokenService(t, clock),
		Passwords: testutil.NewPasswordHasher(t),
		Notifier:  notifier,
	})

	return &testEnv{service: service, db: conn, clock: clock, notifier: notifier}
}

// register creates an account and returns the resolved user.
func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()

	token, err := e.service.Register(context.Background(), username, "pw-"+username)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}

	user, err := e.service.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", username, err)
	}
	return user
}

func date(day int) *types.DateTime {
	return &types.DateTime{Time: time.Date(2026, 2, day, 9, 30, 0, 0, time.UTC)}
}

func TestNewDefaultsNotifier(t *testing.T) {
	service := New(Options{})

	// Must not panic without a notifier.
	service.notify(1, types.ResourceTasks)
}

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	categories, err := env.service.ListCategories(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}

	if len(categories) != len(types.DefaultCategories) {
		t.Fatalf("expected %d categories, got %d", len(types.DefaultCategories), len(categories))
	}

	for i, want := range types.DefaultCategories {
		if categories[i].Name != want.Name || categories[i].Color != want.Color {
			t.Errorf("category %d = %s %s, want %s %s", i, categories[i].Name, categories[i].Color, want.Name, want.Color)
		}
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	if user.PasswordHash == "" || user.PasswordHash == "pw-alice" {
		t.Fatalf("expected a bcrypt hash, got %q", user.PasswordHash)
	}
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.service.Register(context.Background(), "alice", "another")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var count int64
	env.db.Model(&models.User{}).Where("username = ?", "alice").Count(&count)
	if count != 1 {
		t.Fatalf("expected one alice, got %d", count)
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, creds := range [][2]string{{"", "pw"}, {"bob", ""}} {
		if _, err := env.service.Register(context.Background(), creds[0], creds[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Register(%q, %q) = %v, want ErrInvalidInput", creds[0], creds[1], err)
		}
	}
}

func TestRegisterIsAtomic(t *testing.T) {
	env := newTestEnv(t)

	err := env.db.Callback().Create().Before("gorm:create").Register("test:fail_category_seed", func(tx *gorm.DB) {
		if tx.Statement.Table == "categories" {
			_ = tx.AddError(errors.New("seed failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := env.service.Register(context.Background(), "bob", "pw"); err == nil {
		t.Fatal("expected registration to fail")
	}

	var users, categories int64
	env.db.Model(&models.User{}).Count(&users)
	env.db.Model(&models.Category{}).Count(&categories)

	if users != 0 || categories != 0 {
		t.Fatalf("expected rollback, found %d users and %d categories", users, categories)
	}
}

func TestLoginResolvesToSameUser(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "alice")

	token, err := env.service.Login(context.Background(), "alice", "pw-alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user, err := env.service.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if user.ID != registered.ID || user.Username != "alice" {
		t.Fatalf("token resolved to %d %q, want %d alice", user.ID, user.Username, registered.ID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, wrongPassword := env.service.Login(context.Background(), "alice", "nope")
	_, unknownUser := env.service.Login(context.Background(), "mallory", "pw-alice")

	if !errors.Is(wrongPassword, ErrUnauthorized) || !errors.Is(unknownUser, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for both, got %v and %v", wrongPassword, unknownUser)
	}

	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.service.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	env.clock.Advance(31 * time.Minute)

	if _, err := env.service.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateRejectsTokenForMissingUser(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.service.tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := env.service.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateTaskWithoutCategory(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	task, err := env.service.CreateTask(context.Background(), user.ID, types.CreateTaskRequest{
		Title: "Buy milk",
		Date:  date(14),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if task.ID == 0 || task.Title != "Buy milk" || task.Description != "" || task.Completed {
		t.Fatalf("unexpected task %+v", task)
	}
	if !task.Date.Equal(date(14).Time) {
		t.Fatalf("date = %v, want %v", task.Date, date(14).Time)
	}
	if task.CategoryID != nil || task.CategoryName != nil || task.CategoryColor != nil {
		t.Fatalf("expected no category, got %+v", task)
	}

	events := env.notifier.Events()
	if len(events) != 1 || events[0] != (notification{userID: user.ID, resource: types.ResourceTasks}) {
		t.Fatalf("unexpected notifications %+v", events)
	}
}

func TestCreateTaskWithOwnedCategory(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	categories, _ := env.service.ListCategories(context.Background(), user.ID)
	dom := categories[1]

	description := "weekly"
	task, err := env.service.CreateTask(context.Background(), user.ID, types.CreateTaskRequest{
		Title:       "Clean",
		Description: &description,
		Date:        date(15),
		CategoryID:  &dom.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if task.CategoryName == nil || *task.CategoryName != "Dom" || task.CategoryColor == nil || *task.CategoryColor != "#10b981" {
		t.Fatalf("expected Dom category, got %+v", task)
	}
	if task.Description != "weekly" {
		t.Fatalf("description = %q", task.Description)
	}
}

// A task may reference another user's category; the id is stored as given.
// This documents current behaviour, not a desired property.
func TestCreateTaskAcceptsForeignCategory(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	aliceCategories, _ := env.service.ListCategories(context.Background(), alice.ID)

	task, err := env.service.CreateTask(context.Background(), bob.ID, types.CreateTaskRequest{
		Title:      "Borrowed label",
		Date:       date(16),
		CategoryID: &aliceCategories[0].ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if task.CategoryName == nil || *task.CategoryName != "Praca" {
		t.Fatalf("expected alice's category to be linked, got %+v", task)
	}
}

func TestCreateTaskValidates(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	tests := []struct {
		name string
		req  types.CreateTaskRequest
	}{
		{name: "missing title", req: types.CreateTaskRequest{Date: date(1)}},
		{name: "missing date", req: types.CreateTaskRequest{Title: "x"}},
		{name: "zero date", req: types.CreateTaskRequest{Title: "x", Date: &types.DateTime{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.service.CreateTask(context.Background(), user.ID, tt.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestListTasksIsOwnerScopedAndOrdered(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	for i, title := range []string{"first", "second", "third"} {
		// Later ids get earlier dates; order must still follow insertion.
		if _, err := env.service.CreateTask(context.Background(), alice.ID, types.CreateTaskRequest{Title: title, Date: date(20 - i)}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	if _, err := env.service.CreateTask(context.Background(), bob.ID, types.CreateTaskRequest{Title: "bob's", Date: date(1)}); err != nil {
		t.Fatalf("create bob's: %v", err)
	}

	tasks, err := env.service.ListTasks(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, title := range []string{"first", "second", "third"} {
		if tasks[i].Title != title {
			t.Fatalf("tasks[%d] = %q, want %q", i, tasks[i].Title, title)
		}
	}
}

func TestListTasksEmptyIsNotNil(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	tasks, err := env.service.ListTasks(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestUpdateTaskCompletedOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	categories, _ := env.service.ListCategories(context.Background(), user.ID)

	description := "2 litres"
	created, err := env.service.CreateTask(context.Background(), user.ID, types.CreateTaskRequest{
		Title:       "Buy milk",
		Description: &description,
		Date:        date(14),
		CategoryID:  &categories[0].ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := env.service.UpdateTask(context.Background(), user.ID, created.ID, types.TaskPatch{
		Completed: types.Some(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.Completed {
		t.Fatal("expected task to be completed")
	}
	if updated.Title != created.Title || updated.Description != created.Description || !updated.Date.Equal(created.Date) {
		t.Fatalf("unrelated fields changed: before %+v after %+v", created, updated)
	}
	if updated.CategoryID == nil || *updated.CategoryID != categories[0].ID {
		t.Fatalf("category changed: %+v", updated.CategoryID)
	}

	// completed can go back to false freely.
	reopened, err := env.service.UpdateTask(context.Background(), user.ID, created.ID, types.TaskPatch{
		Completed: types.Some(false),
	})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Completed {
		t.Fatal("expected task to be reopened")
	}
}

func TestUpdateTaskFields(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	categories, _ := env.service.ListCategories(context.Background(), user.ID)

	created, _ := env.service.CreateTask(context.Background(), user.ID, types.CreateTaskRequest{
		Title:      "Draft",
		Date:       date(1),
		CategoryID: &categories[0].ID,
	})

	updated, err := env.service.UpdateTask(context.Background(), user.ID, created.ID, types.TaskPatch{
		Title:       types.Some("Final"),
		Description: types.Some(""),
		Date:        types.Some(*date(2)),
		CategoryID:  types.Null[uint](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "Final" || !updated.Date.Equal(date(2).Time) {
		t.Fatalf("unexpected task %+v", updated)
	}
	if updated.CategoryID != nil || updated.CategoryName != nil {
		t.Fatalf("expected category to be cleared, got %+v", updated)
	}

	moved, err := env.service.UpdateTask(context.Background(), user.ID, created.ID, types.TaskPatch{
		CategoryID: types.Some(categories[3].ID),
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.CategoryName == nil || *moved.CategoryName != "Nauka" {
		t.Fatalf("expected Nauka, got %+v", moved)
	}
}

func TestUpdateTaskRejectsNullRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	created, _ := env.service.CreateTask(context.Background(), user.ID, types.CreateTaskRequest{Title: "x", Date: date(1)})

	patches := map[string]types.TaskPatch{
		"null title":       {Title: types.Null[string]()},
		"empty title":      {Title: types.Some("")},
		"null description": {Description: types.Null[string]()},
		"null date":        {Date: types.Null[types.DateTime]()},
		"null completed":   {Completed: types.Null[bool]()},
	}

	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			if _, err := env.service.UpdateTask(context.Background(), user.ID, created.ID, patch); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdateTaskOfAnotherUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	task, _ := env.service.CreateTask(context.Background(), alice.ID, types.CreateTaskRequest{Title: "private", Date: date(1)})

	_, err := env.service.UpdateTask(context.Background(), bob.ID, task.ID, types.TaskPatch{Title: types.Some("pwned")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	tasks, _ := env.service.ListTasks(context.Background(), alice.ID)
	if tasks[0].Title != "private" {
		t.Fatalf("task was modified: %+v", tasks[0])
	}
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	if _, err := env.service.UpdateTask(context.Background(), user.ID, 999, types.TaskPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	task, _ := env.service.CreateTask(context.Background(), user.ID, types.CreateTaskRequest{Title: "x", Date: date(1)})

	if err := env.service.DeleteTask(context.Background(), user.ID, task.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}

	if err := env.service.DeleteTask(context.Background(), user.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	var count int64
	env.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Fatal("expected hard delete")
	}
}

func TestDeleteTaskOfAnotherUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	task, _ := env.service.CreateTask(context.Background(), alice.ID, types.CreateTaskRequest{Title: "x", Date: date(1)})

	if err := env.service.DeleteTask(context.Background(), bob.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	tasks, _ := env.service.ListTasks(context.Background(), alice.ID)
	if len(tasks) != 1 {
		t.Fatal("alice's task must survive")
	}
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")

	defaulted, err := env.service.CreateCategory(context.Background(), user.ID, types.CreateCategoryRequest{Name: "Zakupy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if defaulted.Color != types.DefaultCategoryColor {
		t.Fatalf("color = %q, want default", defaulted.Color)
	}

	// Names are not unique per user.
	duplicate, err := env.service.CreateCategory(context.Background(), user.ID, types.CreateCategoryRequest{Name: "Zakupy", Color: "#000000"})
	if err != nil {
		t.Fatalf("create duplicate: %v", err)
	}
	if duplicate.ID == defaulted.ID || duplicate.Color != "#000000" {
		t.Fatalf("unexpected duplicate %+v", duplicate)
	}

	categories, _ := env.service.ListCategories(context.Background(), user.ID)
	if len(categories) != len(types.DefaultCategories)+2 {
		t.Fatalf("expected %d categories, got %d", len(types.DefaultCategories)+2, len(categories))
	}

	if _, err := env.service.CreateCategory(context.Background(), user.ID, types.CreateCategoryRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}

	last := env.notifier.Events()
	if got := last[len(last)-1]; got.resource != types.ResourceCategories || got.userID != user.ID {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestListCategoriesIsOwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	if _, err := env.service.CreateCategory(context.Background(), bob.ID, types.CreateCategoryRequest{Name: "Bob only"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	categories, _ := env.service.ListCategories(context.Background(), alice.ID)
	for _, c := range categories {
		if c.Name == "Bob only" {
			t.Fatal("alice sees bob's category")
		}
	}
}
