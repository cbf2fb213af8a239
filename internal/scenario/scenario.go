package scenario

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/FuketsuBaka/sequelize-sscce/internal/model"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
	"github.com/pkg/errors"
)

// DuplicateUsername is shared by two live fixture users.
const DuplicateUsername = "some_other_username"

var ErrExpectationFailed = errors.New("expectation failed")

type Schema interface {
	AfterBulkSync(fn func())
	Sync(ctx context.Context, options db.SyncOptions) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Count(ctx context.Context) (int64, error)
	Destroy(ctx context.Context, f model.UserFilter) (int64, error)
}

type fixture struct {
	label string
	user  model.User
}

var fixtures = []fixture{
	{label: "User 1 (normal)", user: model.User{Name: "User 1", Username: "some_username"}},
	{label: "User 2 (normal)", user: model.User{Name: "User 2", Username: DuplicateUsername}},
	{label: "User 3 (duplicate username of User 2)", user: model.User{Name: "User 3", Username: DuplicateUsername}},
}

// DestroyOutcome holds whatever the bulk delete produced: a row count or the
// error it failed with.
type DestroyOutcome struct {
	Deleted int64
	Err     error
}

func (o DestroyOutcome) IsError() bool {
	return o.Err != nil
}

func (o DestroyOutcome) String() string {
	if o.Err != nil {
		return "error: " + o.Err.Error()
	}
	return fmt.Sprintf("%d rows", o.Deleted)
}

type Report struct {
	SyncCalls int64
	Users     []*model.User
	Count     int64
	Destroy   DestroyOutcome
}

type Scenario struct {
	schema Schema
	users  UserRepository
}

func New(schema Schema, users UserRepository) *Scenario {
	return &Scenario{
		schema: schema,
		users:  users,
	}
}

// Run drives the reproduction. Failing steps are returned wrapped; unmet
// expectations wrap ErrExpectationFailed. A failing bulk delete is the
// expected outcome and ends up in Report.Destroy.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	var syncCalls atomic.Int64
	s.schema.AfterBulkSync(func() { syncCalls.Add(1) })
	if err := s.schema.Sync(ctx, db.SyncOptions{Force: true}); err != nil {
		return report, errors.Wrap(err, "sync")
	}
	report.SyncCalls = syncCalls.Load()
	if err := expectEqual("after bulk sync calls", int64(1), report.SyncCalls); err != nil {
		return report, err
	}

	for _, f := range fixtures {
		u := f.user
		created, err := s.users.Create(ctx, &u)
		if err != nil {
			return report, errors.Wrapf(err, "create %s", f.label)
		}
		report.Users = append(report.Users, created)
		logger.Info(f.label,
			"id", created.ID,
			"name", created.Name,
			"username", created.Username,
			"deleted_at", created.DeletedAt,
		)
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return report, errors.Wrap(err, "count")
	}
	report.Count = count
	if err = expectEqual("user count", int64(len(fixtures)), count); err != nil {
		return report, err
	}

	logger.Info("attempting to delete all users", "username", DuplicateUsername)
	report.Destroy = s.destroy(ctx, model.ByUsername(DuplicateUsername))

	if !report.Destroy.IsError() {
		return report, errors.Wrapf(ErrExpectationFailed, "destroy: expected an error, got %s", report.Destroy)
	}
	return report, nil
}

func (s *Scenario) destroy(ctx context.Context, f model.UserFilter) DestroyOutcome {
	deleted, err := s.users.Destroy(ctx, f)
	if err != nil {
		logger.Info("delete failed with error", "error", err)
		return DestroyOutcome{Err: err}
	}
	logger.Info("delete succeeded", "deleted", deleted)
	return DestroyOutcome{Deleted: deleted}
}

func expectEqual(what string, expected, actual int64) error {
	if expected != actual {
		return errors.Wrapf(ErrExpectationFailed, "%s: expected %d, got %d", what, expected, actual)
	}
	return nil
}
