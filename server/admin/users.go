package admin

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"github.com/skybiz/skybiz/server/models"
)

const (
	ROLE_SUPERADMIN = "superadmin"
	ROLE_USER       = "user"
)

type loginInput struct {
	Username string `form:"username" validate:"required,max=150"`
	Password string `form:"password" validate:"required"`
}

type userInput struct {
	UserID   *uint  `form:"user_id"`
	Username string `form:"username" validate:"required,max=150"`
	Email    string `form:"email" validate:"omitempty,email,max=254"`
	Password string `form:"password"`
	Role     string `form:"role" validate:"omitempty,oneof=superadmin user"`

	// PackageID is only applied when the form has a package_id field. An empty value clears it.
	PackageID  *uint `form:"package_id"`
	SetPackage bool
}

// Authenticate checks the credentials of a staff member. It returns ErrInvalidCredentials
// for unknown users or wrong passwords and ErrNotStaff for valid non-staff accounts.
func Authenticate(username, password string) (*models.User, error) {
	user, err := models.Authenticate(username, password)
	if models.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.IsStaff {
		return nil, ErrNotStaff
	}

	if err = user.TouchLastLogin(); err != nil {
		logg.Warnf("unable to record last login for %v: %v", user.Username, err)
	}

	return user, nil
}

func decodeLogin(form url.Values) (loginInput, error) {
	input := loginInput{
		Username: formString(form, "username"),
		Password: form.Get("password"),
	}

	return input, validateInput(input, &ValidationError{})
}

func login(ctx context.Context, env *Env, input loginInput) (Result, error) {
	user, err := Authenticate(input.Username, input.Password)
	if err != nil {
		return Result{}, err
	}

	return Result{Notice: "Logged in successfully.", User: user}, nil
}

func logout(ctx context.Context, env *Env, _ struct{}) (Result, error) {
	return Result{Notice: "Logged out successfully.", EndSession: true}, nil
}

func decodeUser(form url.Values) (userInput, error) {
	verr := &ValidationError{}
	input := userInput{
		UserID:   formOptionalID(form, "user_id", verr),
		Username: formString(form, "username"),
		Email:    formString(form, "email"),
		Password: form.Get("password"),
		Role:     formString(form, "role"),
	}

	if _, ok := form["package_id"]; ok {
		input.SetPackage = true
		input.PackageID = formOptionalID(form, "package_id", verr)
	}

	return input, validateInput(input, verr)
}

func addUser(ctx context.Context, env *Env, input userInput) (Result, error) {
	if input.Role == "" {
		input.Role = ROLE_SUPERADMIN
	}

	user, err := createUser(input)
	if err != nil {
		return Result{}, err
	}

	notice := fmt.Sprintf("User %v added successfully.", user.Username)
	if input.Role == ROLE_SUPERADMIN {
		notice = fmt.Sprintf("User %v added successfully as Super Admin.", user.Username)
	}

	return Result{Notice: notice}, nil
}

func editUser(ctx context.Context, env *Env, input userInput) (Result, error) {
	if input.UserID == nil {
		return Result{}, &ValidationError{Fields: []FieldError{{"user_id", "This field is required."}}}
	}

	data := map[string]interface{}{
		"is_staff":     input.Role == ROLE_SUPERADMIN,
		"is_superuser": input.Role == ROLE_SUPERADMIN,
	}

	user, err := updateUser(*input.UserID, input, data)
	if err != nil {
		return Result{}, err
	}

	group := models.USER_GROUP
	if input.Role == ROLE_SUPERADMIN {
		group = models.STAFF_GROUP
	}
	if err = user.JoinGroup(group); err != nil {
		return Result{}, errors.Wrap(err, "join group")
	}

	return Result{Notice: fmt.Sprintf("User %v updated successfully.", input.Username)}, nil
}

func deleteUser(ctx context.Context, env *Env, input idInput) (Result, error) {
	user, err := models.FindUserBy("id", input.ID)
	if err != nil {
		return Result{}, notFoundAs(err, "User")
	}

	if err = models.DeleteUser(user.ID); err != nil {
		return Result{}, notFoundAs(err, "User")
	}

	return Result{Notice: fmt.Sprintf("User %v deleted successfully.", user.Username)}, nil
}

// saveUser creates a plain user when no id is given, otherwise it updates the
// account details and leaves the role untouched.
func saveUser(ctx context.Context, env *Env, input userInput) (Result, error) {
	if input.UserID == nil {
		input.Role = ROLE_USER
		if _, err := createUser(input); err != nil {
			return Result{}, err
		}

		return Result{Notice: "User added successfully."}, nil
	}

	if _, err := updateUser(*input.UserID, input, map[string]interface{}{}); err != nil {
		return Result{}, err
	}

	return Result{Notice: "User updated successfully."}, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func createUser(input userInput) (*models.User, error) {
	if input.Password == "" {
		return nil, &ValidationError{Fields: []FieldError{{"password", "This field is required."}}}
	}

	if err := checkPackage(input); err != nil {
		return nil, err
	}

	taken, err := models.UsernameTaken(input.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	isAdmin := input.Role == ROLE_SUPERADMIN
	user := &models.User{
		Username:    input.Username,
		Email:       input.Email,
		Password:    input.Password,
		IsStaff:     isAdmin,
		IsSuperuser: isAdmin,
	}

	if err = models.CreateUser(user); err != nil {
		return nil, err
	}

	group := models.USER_GROUP
	if isAdmin {
		group = models.STAFF_GROUP
	}
	if err = user.JoinGroup(group); err != nil {
		return nil, errors.Wrap(err, "join group")
	}

	if err = assignPackage(user, input); err != nil {
		return nil, err
	}

	return user, nil
}

// updateUser applies the account fields of input plus any extra columns in data.
// A blank password keeps the current one.
func updateUser(id uint, input userInput, data map[string]interface{}) (*models.User, error) {
	user, err := models.FindUserWithProfile(id)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}

	if err = checkPackage(input); err != nil {
		return nil, err
	}

	taken, err := models.UsernameTaken(input.Username, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	data["username"] = input.Username
	data["email"] = input.Email
	if input.Password != "" {
		data["password"] = input.Password
	}

	if err = user.Update(data); err != nil {
		return nil, notFoundAs(err, "User")
	}

	if err = assignPackage(user, input); err != nil {
		return nil, err
	}

	return user, nil
}

func checkPackage(input userInput) error {
	if !input.SetPackage || input.PackageID == nil {
		return nil
	}

	_, err := models.FindPackage(*input.PackageID)
	return notFoundAs(err, "Package")
}

// assignPackage sets the package on the user's profile when the form carried one.
func assignPackage(user *models.User, input userInput) error {
	if !input.SetPackage {
		return nil
	}

	if user.Profile == nil {
		return errors.Errorf("user %v has no profile", user.Username)
	}

	if err := models.AssignPackage(user.ID, input.PackageID); err != nil {
		return notFoundAs(err, "User")
	}

	user.Profile.PackageID = input.PackageID
	return nil
}
