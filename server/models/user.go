package models

import (
	"fmt"
	"time"

	"github.com/skybiz/skybiz/server/auth"
	"gorm.io/gorm"
)

var (
	allFieldsExceptPassword = []string{"id",
		"username",
		"email",
		"is_staff",
		"is_superuser",
		"is_active",
		"last_login",
		"created_at",
		"updated_at",
	}

	updatableFields = []string{"username",
		"email",
		"password",
		"is_staff",
		"is_superuser",
		"is_active",
	}
)

type User struct {
	BaseModel
	Username    string       `json:"username" gorm:"size:150;not null;unique"`
	Email       string       `json:"email" gorm:"size:254"`
	Password    string       `json:"-" gorm:"not null"`
	IsStaff     bool         `json:"is_staff"`
	IsSuperuser bool         `json:"is_superuser"`
	IsActive    bool         `json:"is_active" gorm:"default:true"`
	LastLogin   *time.Time   `json:"last_login,omitempty"`
	Profile     *UserProfile `json:"profile,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Groups      []Group      `json:"groups,omitempty" gorm:"many2many:user_groups;"`
}

// UserProfile links a user account to the package they are subscribed to.
type UserProfile struct {
	BaseModel
	UserID    uint     `json:"user_id" gorm:"not null;unique"`
	PackageID *uint    `json:"package_id"`
	Package   *Package `json:"package,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(data["password"].(string))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	fields := pickFields(data)
	if len(fields) == 0 {
		return nil
	}

	res := db.Model(&User{}).Where("id = ?", user.ID).Select(fields).Updates(data)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SubscribedPackageID is the id of the user's package, or 0 when there is none.
func (user User) SubscribedPackageID() uint {
	if user.Profile == nil || user.Profile.PackageID == nil {
		return 0
	}
	return *user.Profile.PackageID
}

// JoinGroup replaces the user's group membership with the named group.
func (user *User) JoinGroup(name string) error {
	group, err := FindGroup(name)
	if err != nil {
		return err
	}

	return db.Model(user).Association("Groups").Replace(group)
}

func (user *User) TouchLastLogin() error {
	now := time.Now().UTC()
	user.LastLogin = &now
	return db.Model(&User{}).Where("id = ?", user.ID).Update("last_login", now).Error
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserWithProfile(userID interface{}) (*User, error) {
	user := User{}
	err := db.Preload("Profile").Preload("Groups").Select(allFieldsExceptPassword).First(&user, userID).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UsernameTaken reports whether a user other than exceptID already uses username.
func UsernameTaken(username string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&User{}).Where("username = ? AND id <> ?", username, exceptID).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Authenticate returns the user for the given credentials, or gorm.ErrRecordNotFound when
// the username is unknown, the account is inactive or the password doesn't match.
func Authenticate(username, password string) (*User, error) {
	user := User{}
	err := db.First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}

	if !user.IsActive || !auth.CheckPasswordHash(password, user.Password) {
		return nil, gorm.ErrRecordNotFound
	}

	user.Password = ""
	return &user, nil
}

// CreateUser hashes user.Password, then stores the user together with an empty profile.
func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash
	user.IsActive = true

	if user.Profile == nil {
		user.Profile = &UserProfile{}
	}

	return db.Create(user).Error
}

// DeleteUser removes the user and its profile, and detaches its speed test results.
func DeleteUser(id interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&user).Association("Groups").Clear(); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&UserProfile{}).Error; err != nil {
			return err
		}

		err := tx.Model(&SpeedTestResult{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error
		if err != nil {
			return err
		}

		return deleteByID(tx, &User{}, user.ID)
	})
}

func AllUsers() ([]User, error) {
	users := []User{}
	err := db.Preload("Profile").Preload("Groups").Select(allFieldsExceptPassword).Order("id").Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// AssignPackage points the user's profile at packageID, or clears it when packageID is nil.
func AssignPackage(userID uint, packageID *uint) error {
	res := db.Model(&UserProfile{}).Where("user_id = ?", userID).Update("package_id", packageID)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func pickFields(data map[string]interface{}) []string {
	fields := []string{}
	for _, field := range updatableFields {
		if _, ok := data[field]; ok {
			fields = append(fields, field)
		}
	}

	return fields
}

func selectPublicUserFields(tx *gorm.DB) *gorm.DB {
	return tx.Select(allFieldsExceptPassword)
}
