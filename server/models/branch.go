package models

import (
	"strings"

	"gorm.io/gorm"
)

type Branch struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:100;not null"`
	Address     string  `json:"address" gorm:"size:200;not null"`
	City        string  `json:"city" gorm:"size:100;not null"`
	State       string  `json:"state" gorm:"size:100;not null"`
	Phone       string  `json:"phone" gorm:"size:30;not null"`
	Email       string  `json:"email" gorm:"size:254;not null"`
	IsActive    bool    `json:"is_active"`
	WebsiteLink *string `json:"website_link" gorm:"size:200"`
}

// BeforeSave keeps website links absolute.
func (branch *Branch) BeforeSave(tx *gorm.DB) error {
	if branch.WebsiteLink != nil {
		link := NormalizeWebsiteLink(*branch.WebsiteLink)
		if link == "" {
			branch.WebsiteLink = nil
		} else {
			branch.WebsiteLink = &link
		}
	}

	return nil
}

// NormalizeWebsiteLink prefixes links that have no http(s) scheme with https://.
func NormalizeWebsiteLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}

	return "https://" + link
}

func CreateBranch(branch *Branch) error {
	return db.Create(branch).Error
}

func FindBranch(id interface{}) (*Branch, error) {
	branch := Branch{}
	err := db.First(&branch, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &branch, nil
}

// Save writes every field of an existing branch.
func (branch *Branch) Save() error {
	return db.Save(branch).Error
}

func DeleteBranch(id interface{}) error {
	return deleteByID(db, &Branch{}, id)
}

func ActiveBranches() ([]Branch, error) {
	branches := []Branch{}
	err := db.Where("is_active = ?", true).Order("name").Find(&branches).Error
	if err != nil {
		return nil, err
	}

	return branches, nil
}

func AllBranches() ([]Branch, error) {
	branches := []Branch{}
	err := db.Scopes(newestFirst).Find(&branches).Error
	if err != nil {
		return nil, err
	}

	return branches, nil
}
