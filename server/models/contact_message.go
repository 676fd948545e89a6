package models

import "gorm.io/gorm"

type ContactMessage struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;not null" validate:"required,max=100"`
	Email     string `json:"email" gorm:"size:254;not null" validate:"required,email,max=254"`
	Subject   string `json:"subject" gorm:"size:200;not null" validate:"required,max=200"`
	Message   string `json:"message" gorm:"type:text;not null" validate:"required"`
	ReplySent bool   `json:"reply_sent" gorm:"default:false"`
}

// BusinessQuoteRequest rows are never modified after creation.
type BusinessQuoteRequest struct {
	BaseModel
	CompanyName   string  `json:"company_name" gorm:"size:100;not null" validate:"required,max=100"`
	ContactPerson string  `json:"contact_person" gorm:"size:100;not null" validate:"required,max=100"`
	Email         string  `json:"email" gorm:"size:254;not null" validate:"required,email,max=254"`
	Phone         *string `json:"phone" gorm:"size:20" validate:"omitempty,max=20"`
	Bandwidth     string  `json:"bandwidth" gorm:"size:50;not null" validate:"required,max=50"`
	Requirements  string  `json:"requirements" gorm:"type:text;not null" validate:"required"`
}

func CreateContactMessage(message *ContactMessage) error {
	message.ReplySent = false
	return db.Create(message).Error
}

func FindContactMessage(id interface{}) (*ContactMessage, error) {
	message := ContactMessage{}
	err := db.First(&message, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &message, nil
}

func (message *ContactMessage) MarkReplySent() error {
	res := db.Model(&ContactMessage{}).Where("id = ?", message.ID).Update("reply_sent", true)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	message.ReplySent = true
	return nil
}

func DeleteAllContactMessages() (int64, error) {
	return deleteAll(&ContactMessage{})
}

func AllContactMessages() ([]ContactMessage, error) {
	messages := []ContactMessage{}
	err := db.Scopes(newestFirst).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func RecentContactMessages(limit int) ([]ContactMessage, error) {
	messages := []ContactMessage{}
	err := db.Scopes(newestFirst).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func CreateBusinessQuoteRequest(request *BusinessQuoteRequest) error {
	return db.Create(request).Error
}

func AllBusinessQuoteRequests() ([]BusinessQuoteRequest, error) {
	requests := []BusinessQuoteRequest{}
	err := db.Scopes(newestFirst).Find(&requests).Error
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func RecentBusinessQuoteRequests(limit int) ([]BusinessQuoteRequest, error) {
	requests := []BusinessQuoteRequest{}
	err := db.Scopes(newestFirst).Limit(limit).Find(&requests).Error
	if err != nil {
		return nil, err
	}

	return requests, nil
}
