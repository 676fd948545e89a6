package models

import "gorm.io/gorm"

const MAX_NEWS_MESSAGE_LENGTH = 500

type NewsTicker struct {
	BaseModel
	Message  string `json:"message" gorm:"size:500;not null"`
	IsActive bool   `json:"is_active"`
}

func CreateNews(news *NewsTicker) error {
	return db.Create(news).Error
}

func FindNews(id interface{}) (*NewsTicker, error) {
	news := NewsTicker{}
	err := db.First(&news, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &news, nil
}

func (news *NewsTicker) Update(data map[string]interface{}) error {
	res := db.Model(&NewsTicker{}).Where("id = ?", news.ID).Select("message", "is_active").Updates(data)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteNews removes the entry if it exists; deleting a missing entry is not an error.
func DeleteNews(id interface{}) error {
	return deleteByID(db, &NewsTicker{}, id)
}

// ActiveNews returns the entries shown in the site-wide ticker, newest first.
func ActiveNews() ([]NewsTicker, error) {
	news := []NewsTicker{}
	err := db.Where("is_active = ?", true).Scopes(newestFirst).Find(&news).Error
	if err != nil {
		return nil, err
	}

	return news, nil
}

func AllNews() ([]NewsTicker, error) {
	news := []NewsTicker{}
	err := db.Scopes(newestFirst).Find(&news).Error
	if err != nil {
		return nil, err
	}

	return news, nil
}
