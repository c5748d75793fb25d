package database

import (
	"context"
	"fmt"

	"github.com/iliyamo/todo-api/internal/model"
)

// TaskSeeder is the subset of the task store used by SeedTasks.
type TaskSeeder interface {
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, t *model.Task) error
}

var sampleTasks = []string{
	"Build up a task list",
	"Tick some items off",
	"Make a brew",
}

// SeedTasks inserts the sample tasks when the store holds none.  It returns
// the number of tasks inserted.
func SeedTasks(ctx context.Context, store TaskSeeder) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, desc := range sampleTasks {
		if err := store.Add(ctx, &model.Task{Description: desc}); err != nil {
			return 0, fmt.Errorf("seeding task %q: %w", desc, err)
		}
	}
	return len(sampleTasks), nil
}
