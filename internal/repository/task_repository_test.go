package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskRepositoryTestSuite runs the repositories against in-memory SQLite
type TaskRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	tasks TaskRepository
	tags  TagRepository
	ctx   context.Context
	clock time.Time
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	var err error

	suite.db, err = database.Connect(config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(suite.db, zap.NewNop()))

	suite.tags = NewTagRepository(suite.db)
	suite.tasks = NewTaskRepository(suite.db, suite.tags)
	suite.ctx = context.Background()
	suite.clock = time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
}

func (suite *TaskRepositoryTestSuite) TearDownTest() {
	suite.Require().NoError(database.Close(suite.db))
}

func (suite *TaskRepositoryTestSuite) tick() time.Time {
	suite.clock = suite.clock.Add(time.Minute)
	return suite.clock
}

func (suite *TaskRepositoryTestSuite) createTask(title string, priority int, tags ...string) *models.Task {
	task := &models.Task{
		Title:     title,
		Priority:  priority,
		DueDate:   datatypes.Date(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
		CreatedAt: suite.tick(),
	}
	suite.Require().NoError(suite.tasks.Create(suite.ctx, task, tags))
	suite.Require().NotZero(task.ID)
	return task
}

func (suite *TaskRepositoryTestSuite) countTags() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Tag{}).Count(&count).Error)
	return count
}

func (suite *TaskRepositoryTestSuite) TestCreate_LinksTags() {
	task := suite.createTask("Write report", 3, "work", "urgent")

	found, err := suite.tasks.FindByID(suite.ctx, task.ID)
	suite.Require().NoError(err)

	suite.Equal("Write report", found.Title)
	suite.False(found.Completed)
	suite.False(found.IsDeleted)
	suite.Nil(found.UpdatedAt)
	suite.Equal([]string{"urgent", "work"}, found.TagNames())
}

func (suite *TaskRepositoryTestSuite) TestResolve_Idempotent() {
	first, err := suite.tags.Resolve(suite.ctx, "work")
	suite.Require().NoError(err)

	second, err := suite.tags.Resolve(suite.ctx, "work")
	suite.Require().NoError(err)

	suite.Equal(first.ID, second.ID)
	suite.Equal(int64(1), suite.countTags())
}

func (suite *TaskRepositoryTestSuite) TestResolveAll_DuplicateNamesShareIdentity() {
	tags, err := suite.tags.ResolveAll(suite.ctx, []string{"home", "work", "home"})
	suite.Require().NoError(err)

	suite.Require().Len(tags, 3)
	suite.Equal(tags[0].ID, tags[2].ID)
	suite.NotEqual(tags[0].ID, tags[1].ID)
	suite.Equal(int64(2), suite.countTags())

	found, err := suite.tags.FindByName(suite.ctx, "work")
	suite.Require().NoError(err)
	suite.Equal(tags[1].ID, found.ID)
}

// countingTags records how often the task store binds the tag registry
type countingTags struct {
	TagRepository
	bound int
}

func (c *countingTags) WithTx(tx *gorm.DB) TagRepository {
	c.bound++
	return c.TagRepository.WithTx(tx)
}

func (suite *TaskRepositoryTestSuite) TestCreate_ResolvesTagsThroughRegistry() {
	tags := &countingTags{TagRepository: suite.tags}
	tasks := NewTaskRepository(suite.db, tags)

	task := &models.Task{
		Title:     "via registry",
		Priority:  2,
		DueDate:   datatypes.Date(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
		CreatedAt: suite.tick(),
	}
	suite.Require().NoError(tasks.Create(suite.ctx, task, []string{"ops"}))

	suite.Equal(1, tags.bound)
	found, err := suite.tags.FindByName(suite.ctx, "ops")
	suite.Require().NoError(err)
	suite.NotZero(found.ID)
}

func (suite *TaskRepositoryTestSuite) TestResolveAll_BoundToTransactionRollsBack() {
	err := suite.db.Transaction(func(tx *gorm.DB) error {
		tags, err := suite.tags.WithTx(tx).ResolveAll(suite.ctx, []string{"temporary"})
		suite.Require().NoError(err)
		suite.Require().Len(tags, 1)
		return errors.New("abort")
	})
	suite.Require().Error(err)

	_, err = suite.tags.FindByName(suite.ctx, "temporary")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestCreate_SharedTagCreatedOnce() {
	suite.createTask("A", 1, "shared", "a")
	suite.createTask("B", 2, "shared", "b")

	suite.Equal(int64(3), suite.countTags())
}

func (suite *TaskRepositoryTestSuite) TestFindByID_NotFound() {
	_, err := suite.tasks.FindByID(suite.ctx, 999)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestList_OrderAndPagination() {
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		suite.createTask(title, 3)
	}

	tasks, total, err := suite.tasks.List(suite.ctx, TaskFilter{Offset: 2, Limit: 2})
	suite.Require().NoError(err)

	suite.Equal(int64(5), total)
	suite.Require().Len(tasks, 2)
	suite.Equal("three", tasks[0].Title)
	suite.Equal("two", tasks[1].Title)
}

func (suite *TaskRepositoryTestSuite) TestList_TieBreakByID() {
	createdAt := suite.tick()
	var ids []uint64
	for _, title := range []string{"first", "second", "third"} {
		task := &models.Task{
			Title:     title,
			Priority:  1,
			DueDate:   datatypes.Date(createdAt),
			CreatedAt: createdAt,
		}
		suite.Require().NoError(suite.tasks.Create(suite.ctx, task, nil))
		ids = append(ids, task.ID)
	}

	tasks, _, err := suite.tasks.List(suite.ctx, TaskFilter{Limit: 10})
	suite.Require().NoError(err)

	suite.Require().Len(tasks, 3)
	for i, task := range tasks {
		suite.Equal(ids[i], task.ID)
	}
}

func (suite *TaskRepositoryTestSuite) TestList_OffsetBeyondTotal() {
	suite.createTask("only", 1)

	tasks, total, err := suite.tasks.List(suite.ctx, TaskFilter{Offset: 5, Limit: 10})
	suite.Require().NoError(err)

	suite.Equal(int64(1), total)
	suite.NotNil(tasks)
	suite.Empty(tasks)
}

func (suite *TaskRepositoryTestSuite) TestList_Filters() {
	low := suite.createTask("low", 1, "home")
	high := suite.createTask("high", 5, "work", "urgent")
	done := suite.createTask("done", 5, "garden")
	suite.createTask("untagged", 2)

	completed := true
	_, err := suite.tasks.Update(suite.ctx, done.ID, TaskChanges{Completed: &completed, UpdatedAt: suite.tick()})
	suite.Require().NoError(err)

	priority := 5
	tasks, total, err := suite.tasks.List(suite.ctx, TaskFilter{Priority: &priority, Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(tasks, 2)

	notCompleted := false
	tasks, total, err = suite.tasks.List(suite.ctx, TaskFilter{Priority: &priority, Completed: &notCompleted, Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(tasks, 1)
	suite.Equal(high.ID, tasks[0].ID)

	// matches any of the requested tags
	tasks, total, err = suite.tasks.List(suite.ctx, TaskFilter{Tags: []string{"home", "urgent", "missing"}, Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Require().Len(tasks, 2)
	suite.Equal(high.ID, tasks[0].ID)
	suite.Equal(low.ID, tasks[1].ID)
	// each task still carries its full tag set
	suite.Equal([]string{"urgent", "work"}, tasks[0].TagNames())
}

func (suite *TaskRepositoryTestSuite) TestUpdate_ReplacesTagsAndKeepsTagRows() {
	task := suite.createTask("tagged", 2, "a", "b")

	updated, err := suite.tasks.Update(suite.ctx, task.ID, TaskChanges{
		Tags:      []string{"b", "c"},
		TagsSet:   true,
		UpdatedAt: suite.tick(),
	})
	suite.Require().NoError(err)

	suite.Equal([]string{"b", "c"}, updated.TagNames())
	suite.Require().NotNil(updated.UpdatedAt)
	suite.Equal(int64(3), suite.countTags())

	var links int64
	suite.Require().NoError(suite.db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&links).Error)
	suite.Equal(int64(2), links)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_ClearTags() {
	task := suite.createTask("tagged", 2, "a")

	updated, err := suite.tasks.Update(suite.ctx, task.ID, TaskChanges{Tags: []string{}, TagsSet: true, UpdatedAt: suite.tick()})
	suite.Require().NoError(err)

	suite.Empty(updated.Tags)
	suite.Equal(int64(1), suite.countTags())
}

func (suite *TaskRepositoryTestSuite) TestUpdate_NoEffectiveChangeKeepsUpdatedAtNull() {
	task := suite.createTask("same", 2, "a")
	title := "same"
	priority := 2

	updated, err := suite.tasks.Update(suite.ctx, task.ID, TaskChanges{
		Title:     &title,
		Priority:  &priority,
		Tags:      []string{"a"},
		TagsSet:   true,
		UpdatedAt: suite.tick(),
	})
	suite.Require().NoError(err)
	suite.Nil(updated.UpdatedAt)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_DescriptionClear() {
	description := "notes"
	task := &models.Task{
		Title:       "described",
		Description: &description,
		Priority:    1,
		DueDate:     datatypes.Date(suite.clock),
		CreatedAt:   suite.tick(),
	}
	suite.Require().NoError(suite.tasks.Create(suite.ctx, task, nil))

	stamp := suite.tick()
	updated, err := suite.tasks.Update(suite.ctx, task.ID, TaskChanges{DescriptionSet: true, UpdatedAt: stamp})
	suite.Require().NoError(err)

	suite.Nil(updated.Description)
	suite.Require().NotNil(updated.UpdatedAt)
	suite.True(stamp.Equal(*updated.UpdatedAt))
}

func (suite *TaskRepositoryTestSuite) TestSoftDelete() {
	task := suite.createTask("doomed", 1, "x")

	suite.Require().NoError(suite.tasks.SoftDelete(suite.ctx, task.ID))

	_, err := suite.tasks.FindByID(suite.ctx, task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	suite.ErrorIs(suite.tasks.SoftDelete(suite.ctx, task.ID), gorm.ErrRecordNotFound)

	title := "revived?"
	_, err = suite.tasks.Update(suite.ctx, task.ID, TaskChanges{Title: &title, UpdatedAt: suite.tick()})
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	// the row and its links are still stored, and updated_at was not bumped
	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.True(stored.IsDeleted)
	suite.Nil(stored.UpdatedAt)
	suite.Equal("doomed", stored.Title)

	var links int64
	suite.Require().NoError(suite.db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&links).Error)
	suite.Equal(int64(1), links)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}
