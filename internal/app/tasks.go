package service

import (
	"context"
	"slices"
	"strings"

	"github.com/okian/wardwatch/internal/domain/aggregate"
	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
)

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title     string  `json:"title"`
	Priority  string  `json:"priority"`
	DueDate   string  `json:"dueDate"`
	Assignee  string  `json:"assignee"`
	Area      string  `json:"area"`
	Subdomain *string `json:"subdomain"`
}

// TaskPatch updates the non-nil fields of a task.
type TaskPatch struct {
	Title    *string `json:"title"`
	Priority *string `json:"priority"`
	DueDate  *string `json:"dueDate"`
	Assignee *string `json:"assignee"`
}

// TaskCounts are the derived task numbers for a scope.
type TaskCounts struct {
	Open     int `json:"open"`
	DueToday int `json:"dueToday"`
	Overdue  int `json:"overdue"`
}

func validateDate(f fieldErrors, field, value string, required bool) {
	switch {
	case value == "" && required:
		f.add(field, "required")
	case value != "" && !calendar.Valid(value):
		f.add(field, "expected YYYY-MM-DD")
	}
}

func required(f fieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "required")
	}
}

func normalizeSubdomain(sub *string) *string {
	if sub == nil {
		return nil
	}
	v := strings.TrimSpace(*sub)
	if v == "" {
		return nil
	}
	return &v
}

// AddTask creates an open task.
func (s *Service) AddTask(ctx context.Context, in TaskInput) (model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Area = strings.TrimSpace(in.Area)
	in.DueDate = strings.TrimSpace(in.DueDate)
	return create(ctx, s, "add_task", func() error {
		f := fieldErrors{}
		required(f, "title", in.Title)
		required(f, "area", in.Area)
		validateDate(f, "dueDate", in.DueDate, false)
		return f.err()
	}, func() (model.Task, error) {
		now := s.clock()
		task := model.Task{
			ID:        s.newID(),
			Title:     in.Title,
			Priority:  model.ParsePriority(in.Priority),
			DueDate:   in.DueDate,
			Assignee:  strings.TrimSpace(in.Assignee),
			Status:    model.StatusOpen,
			Area:      in.Area,
			Subdomain: normalizeSubdomain(in.Subdomain),
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := s.tasks.Update(ctx, func(items []model.Task) ([]model.Task, error) {
			return append(items, task), nil
		})
		return task, err
	})
}

// UpdateTask edits a task's fields.
func (s *Service) UpdateTask(ctx context.Context, id string, patch TaskPatch) (model.Task, error) {
	f := fieldErrors{}
	if patch.Title != nil {
		required(f, "title", *patch.Title)
	}
	if patch.DueDate != nil {
		validateDate(f, "dueDate", strings.TrimSpace(*patch.DueDate), false)
	}
	if err := s.invalid("update_task", f); err != nil {
		return model.Task{}, err
	}
	return s.mutateTask(ctx, id, func(t *model.Task) {
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Priority != nil {
			t.Priority = model.ParsePriority(*patch.Priority)
		}
		if patch.DueDate != nil {
			t.DueDate = strings.TrimSpace(*patch.DueDate)
		}
		if patch.Assignee != nil {
			t.Assignee = strings.TrimSpace(*patch.Assignee)
		}
	})
}

// SetTaskStatus changes a task's status. Any closed spelling closes it.
func (s *Service) SetTaskStatus(ctx context.Context, id, status string) (model.Task, error) {
	return s.mutateTask(ctx, id, func(t *model.Task) {
		t.Status = model.ParseStatus(status)
	})
}

func (s *Service) mutateTask(ctx context.Context, id string, fn func(*model.Task)) (model.Task, error) {
	var out model.Task
	err := s.tasks.Update(ctx, func(items []model.Task) ([]model.Task, error) {
		i := slices.IndexFunc(items, func(t model.Task) bool { return t.ID == id })
		if i < 0 {
			return nil, notFound("task", id)
		}
		fn(&items[i])
		items[i].UpdatedAt = s.clock()
		out = items[i]
		return items, nil
	})
	return out, err
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Update(ctx, func(items []model.Task) ([]model.Task, error) {
		i := slices.IndexFunc(items, func(t model.Task) bool { return t.ID == id })
		if i < 0 {
			return nil, notFound("task", id)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

// ListTasks returns the tasks of scope.
func (s *Service) ListTasks(ctx context.Context, scope model.Scope) []model.Task {
	return filterScope(s.tasks.Read(ctx), scope, func(t model.Task) (string, *string) { return t.Area, t.Subdomain })
}

// TaskCounts returns open, due-today and overdue counts for scope.
func (s *Service) TaskCounts(ctx context.Context, scope model.Scope) TaskCounts {
	tasks := s.ListTasks(ctx, scope)
	today := s.Today()
	return TaskCounts{
		Open:     aggregate.OpenCount(tasks),
		DueToday: aggregate.DueTodayCount(tasks, today),
		Overdue:  aggregate.OverdueCount(tasks, today),
	}
}

// CountTodoToday is the number of open tasks of scope due today.
func (s *Service) CountTodoToday(ctx context.Context, scope model.Scope) int {
	return aggregate.DueTodayCount(s.ListTasks(ctx, scope), s.Today())
}

// SuggestionInput is the payload for creating a suggestion.
type SuggestionInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Author      string  `json:"author"`
	Area        string  `json:"area"`
	Subdomain   *string `json:"subdomain"`
}

// AddSuggestion records an open improvement proposal.
func (s *Service) AddSuggestion(ctx context.Context, in SuggestionInput) (model.Suggestion, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Area = strings.TrimSpace(in.Area)
	return create(ctx, s, "add_suggestion", func() error {
		f := fieldErrors{}
		required(f, "title", in.Title)
		required(f, "area", in.Area)
		return f.err()
	}, func() (model.Suggestion, error) {
		sg := model.Suggestion{
			ID:          s.newID(),
			Title:       in.Title,
			Description: strings.TrimSpace(in.Description),
			Author:      strings.TrimSpace(in.Author),
			Area:        in.Area,
			Subdomain:   normalizeSubdomain(in.Subdomain),
			Status:      model.StatusOpen,
			CreatedAt:   s.clock(),
		}
		err := s.suggestions.Update(ctx, func(items []model.Suggestion) ([]model.Suggestion, error) {
			return append(items, sg), nil
		})
		return sg, err
	})
}

// SetSuggestionStatus opens or closes a suggestion.
func (s *Service) SetSuggestionStatus(ctx context.Context, id, status string) (model.Suggestion, error) {
	var out model.Suggestion
	err := s.suggestions.Update(ctx, func(items []model.Suggestion) ([]model.Suggestion, error) {
		i := slices.IndexFunc(items, func(sg model.Suggestion) bool { return sg.ID == id })
		if i < 0 {
			return nil, notFound("suggestion", id)
		}
		items[i].Status = model.ParseStatus(status)
		out = items[i]
		return items, nil
	})
	return out, err
}

// ListSuggestions returns the suggestions of scope.
func (s *Service) ListSuggestions(ctx context.Context, scope model.Scope) []model.Suggestion {
	return filterScope(s.suggestions.Read(ctx), scope, func(sg model.Suggestion) (string, *string) { return sg.Area, sg.Subdomain })
}

func filterScope[T any](items []T, scope model.Scope, key func(T) (string, *string)) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if scope.Matches(key(it)) {
			out = append(out, it)
		}
	}
	return out
}
