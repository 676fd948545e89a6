package models

const (
	STAFF_GROUP = "Staff"
	USER_GROUP  = "User"
)

type Group struct {
	BaseModel
	Name  string `json:"name" gorm:"size:150;not null;unique"`
	Users []User `json:"users,omitempty" gorm:"many2many:user_groups;"`
}

func FindGroup(name string) (*Group, error) {
	group := Group{}
	err := db.Select("id", "name").First(&group, "name = ?", name).Error
	if err != nil {
		return nil, err
	}

	return &group, nil
}
