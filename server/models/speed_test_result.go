package models

import "time"

type SpeedTestResult struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	UserID        *uint     `json:"user_id"`
	User          *User     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	DownloadSpeed float64   `json:"download_speed"`
	UploadSpeed   float64   `json:"upload_speed"`
	Latency       float64   `json:"latency"`
	IPAddress     *string   `json:"ip_address" gorm:"size:45"`
	Timestamp     time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
}

func CreateSpeedTestResult(result *SpeedTestResult) error {
	return db.Create(result).Error
}

func DeleteAllSpeedTestResults() (int64, error) {
	return deleteAll(&SpeedTestResult{})
}

func AllSpeedTestResults() ([]SpeedTestResult, error) {
	results := []SpeedTestResult{}
	err := db.Preload("User", selectPublicUserFields).Order("timestamp desc").Order("id desc").Find(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

func RecentSpeedTestResults(limit int) ([]SpeedTestResult, error) {
	results := []SpeedTestResult{}
	err := db.Preload("User", selectPublicUserFields).Order("timestamp desc").Order("id desc").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}
