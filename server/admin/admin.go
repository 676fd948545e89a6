// Package admin implements the staff actions behind the admin panel. Each action is a
// typed command: its form is decoded into an input struct, validated and then run.
package admin

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/skybiz/skybiz/server/logger"
	"github.com/skybiz/skybiz/server/mailer"
	"github.com/skybiz/skybiz/server/models"
)

type Action string

const (
	ACTION_LOGIN                  Action = "login"
	ACTION_LOGOUT                 Action = "logout"
	ACTION_ADD_USER               Action = "add_user"
	ACTION_EDIT_USER              Action = "edit_user"
	ACTION_DELETE_USER            Action = "delete_user"
	ACTION_SAVE_USER              Action = "save_user"
	ACTION_SAVE_PACKAGE           Action = "save_package"
	ACTION_DELETE_PACKAGE         Action = "delete_package"
	ACTION_DELETE_ALL_MESSAGES    Action = "delete_all_messages"
	ACTION_SEND_REPLY             Action = "send_reply"
	ACTION_DELETE_ALL_SPEED_TESTS Action = "delete_all_speed_tests"
	ACTION_ADD_BRANCH             Action = "add_branch"
	ACTION_EDIT_BRANCH            Action = "edit_branch"
	ACTION_SAVE_BRANCH            Action = "save_branch"
	ACTION_DELETE_BRANCH          Action = "delete_branch"
	ACTION_SAVE_NEWS              Action = "save_news"
	ACTION_DELETE_NEWS            Action = "delete_news"
)

var logg = logger.NewLogger("admin")

// Env holds the collaborators commands may use.
type Env struct {
	Mailer    mailer.Sender
	FromEmail string
	Branches  *BranchService
}

// Result is what a command reports back to the page. Notice is always set.
type Result struct {
	Notice string

	// User is set by a successful login; the caller starts a session for it.
	User *models.User

	// EndSession is set by logout.
	EndSession bool
}

type command interface {
	execute(ctx context.Context, env *Env, form url.Values) (Result, error)
	failure() string
}

// typedCommand binds a form decoder to the function that runs the decoded input.
type typedCommand[I any] struct {
	decode        func(form url.Values) (I, error)
	run           func(ctx context.Context, env *Env, input I) (Result, error)
	failureNotice string
}

func (c typedCommand[I]) execute(ctx context.Context, env *Env, form url.Values) (Result, error) {
	input, err := c.decode(form)
	if err != nil {
		return Result{}, err
	}

	return c.run(ctx, env, input)
}

func (c typedCommand[I]) failure() string {
	return c.failureNotice
}

var commands = map[Action]command{
	ACTION_LOGIN:                  typedCommand[loginInput]{decodeLogin, login, "Invalid credentials or not an admin user."},
	ACTION_LOGOUT:                 typedCommand[struct{}]{decodeNothing, logout, "Failed to log out."},
	ACTION_ADD_USER:               typedCommand[userInput]{decodeUser, addUser, "Failed to add user."},
	ACTION_EDIT_USER:              typedCommand[userInput]{decodeUser, editUser, "Failed to update user."},
	ACTION_DELETE_USER:            typedCommand[idInput]{decodeID("user_id"), deleteUser, "Failed to delete user."},
	ACTION_SAVE_USER:              typedCommand[userInput]{decodeUser, saveUser, "Failed to save user."},
	ACTION_SAVE_PACKAGE:           typedCommand[packageInput]{decodePackage, savePackage, "Failed to save package."},
	ACTION_DELETE_PACKAGE:         typedCommand[idInput]{decodeID("package_id"), deletePackage, "Failed to delete package."},
	ACTION_DELETE_ALL_MESSAGES:    typedCommand[struct{}]{decodeNothing, deleteAllMessages, "Failed to delete messages."},
	ACTION_SEND_REPLY:             typedCommand[replyInput]{decodeReply, sendReply, "Failed to send reply."},
	ACTION_DELETE_ALL_SPEED_TESTS: typedCommand[struct{}]{decodeNothing, deleteAllSpeedTests, "Failed to delete speed test results."},
	ACTION_ADD_BRANCH:             typedCommand[BranchInput]{DecodeBranch, addBranch, "Failed to save branch."},
	ACTION_EDIT_BRANCH:            typedCommand[BranchInput]{DecodeBranch, editBranch, "Failed to save branch."},
	ACTION_SAVE_BRANCH:            typedCommand[BranchInput]{DecodeBranch, saveBranch, "Failed to save branch."},
	ACTION_DELETE_BRANCH:          typedCommand[idInput]{decodeID("branch_id"), deleteBranch, "Failed to delete branch."},
	ACTION_SAVE_NEWS:              typedCommand[newsInput]{decodeNews, saveNews, "Failed to save news."},
	ACTION_DELETE_NEWS:            typedCommand[idInput]{decodeID("news_id"), deleteNews, "Failed to delete news."},
}

// Known reports whether action names a command.
func Known(action Action) bool {
	_, ok := commands[action]
	return ok
}

// RequiresStaff reports whether action may only run for a staff session. Login is the only
// action that can run without one.
func RequiresStaff(action Action) bool {
	return action != ACTION_LOGIN
}

// Dispatch runs the command for action with the submitted form. On failure the returned
// Result still carries the notice to show. Unknown actions return ErrUnknownAction.
func Dispatch(ctx context.Context, env *Env, action Action, form url.Values) (Result, error) {
	cmd, ok := commands[action]
	if !ok {
		return Result{}, ErrUnknownAction
	}

	if env.Branches == nil {
		env.Branches = &BranchService{}
	}

	result, err := cmd.execute(ctx, env, form)
	if err != nil {
		notice, ok := userNotice(err)
		if !ok {
			notice = cmd.failure()
			logg.Errorf("%v: %v", action, err)
		}

		return Result{Notice: notice}, errors.WithMessage(err, string(action))
	}

	return result, nil
}

// ---------------------------------------------------------------------------------//
// Shared inputs
// --------------------------------------------------------------------------------//

type idInput struct {
	ID uint
}

func decodeID(key string) func(form url.Values) (idInput, error) {
	return func(form url.Values) (idInput, error) {
		verr := &ValidationError{}
		id := formRequiredID(form, key, verr)
		return idInput{ID: id}, verr.orNil()
	}
}

func decodeNothing(url.Values) (struct{}, error) {
	return struct{}{}, nil
}

// notFoundAs maps gorm's not found error to a NotFoundError for entity.
func notFoundAs(err error, entity string) error {
	if models.IsNotFound(err) {
		return &NotFoundError{Entity: entity}
	}
	return err
}
