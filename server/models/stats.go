package models

import (
	"time"

	"github.com/skybiz/skybiz/utils"
)

// Number of days, today included, in the download speed chart.
const CHART_DAYS = 7

const CHART_LABEL_LAYOUT = "2006-01-02"

type UserStats struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveUsers       int64 `json:"active_users"`
	UsersWithPackages int64 `json:"users_with_packages"`
}

type PackageStats struct {
	TotalPackages       int64 `json:"total_packages"`
	ResidentialPackages int64 `json:"residential_packages"`
	BusinessPackages    int64 `json:"business_packages"`
}

type SpeedTestStats struct {
	SpeedTestsTotal  int64   `json:"speed_tests_total"`
	AvgDownloadSpeed float64 `json:"avg_download_speed"`
	AvgUploadSpeed   float64 `json:"avg_upload_speed"`
	AvgLatency       float64 `json:"avg_latency"`
}

// DailySeries holds one average download value per day, oldest first.
type DailySeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type DashboardStats struct {
	UserStats
	PackageStats
	SpeedTestStats
	RecentMessages         []ContactMessage       `json:"recent_messages"`
	RecentBusinessRequests []BusinessQuoteRequest `json:"recent_business_requests"`
	RecentSpeedTests       []SpeedTestResult      `json:"recent_speed_tests"`
	DownloadChart          DailySeries            `json:"download_chart"`
}

// CurrentDashboardStats computes every dashboard figure relative to now.
func CurrentDashboardStats(now time.Time) (*DashboardStats, error) {
	var err error
	stats := DashboardStats{}

	stats.UserStats, err = CurrentUserStats()
	if err != nil {
		return nil, err
	}

	stats.PackageStats, err = CurrentPackageStats()
	if err != nil {
		return nil, err
	}

	stats.SpeedTestStats, err = CurrentSpeedTestStats()
	if err != nil {
		return nil, err
	}

	stats.RecentMessages, err = RecentContactMessages(RECENT_ROWS)
	if err != nil {
		return nil, err
	}

	stats.RecentBusinessRequests, err = RecentBusinessQuoteRequests(RECENT_ROWS)
	if err != nil {
		return nil, err
	}

	stats.RecentSpeedTests, err = RecentSpeedTestResults(RECENT_ROWS)
	if err != nil {
		return nil, err
	}

	stats.DownloadChart, err = DailyAverageDownload(now, CHART_DAYS)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func CurrentUserStats() (UserStats, error) {
	stats := UserStats{}

	err := db.Model(&User{}).Count(&stats.TotalUsers).Error
	if err != nil {
		return stats, err
	}

	err = db.Model(&User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error
	if err != nil {
		return stats, err
	}

	err = db.Model(&UserProfile{}).Where("package_id IS NOT NULL").Count(&stats.UsersWithPackages).Error
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func CurrentPackageStats() (PackageStats, error) {
	stats := PackageStats{}

	err := db.Model(&Package{}).Count(&stats.TotalPackages).Error
	if err != nil {
		return stats, err
	}

	err = db.Model(&Package{}).Where("package_type = ?", RESIDENTIAL_PACKAGE).Count(&stats.ResidentialPackages).Error
	if err != nil {
		return stats, err
	}

	err = db.Model(&Package{}).Where("package_type = ?", BUSINESS_PACKAGE).Count(&stats.BusinessPackages).Error
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// CurrentSpeedTestStats averages every recorded result. Averages are 0 when there are no results.
func CurrentSpeedTestStats() (SpeedTestStats, error) {
	stats := SpeedTestStats{}

	err := db.Model(&SpeedTestResult{}).Count(&stats.SpeedTestsTotal).Error
	if err != nil {
		return stats, err
	}

	averages := struct {
		AvgDownload float64
		AvgUpload   float64
		AvgLatency  float64
	}{}

	err = db.Model(&SpeedTestResult{}).Select(
		"COALESCE(AVG(download_speed), 0) AS avg_download, " +
			"COALESCE(AVG(upload_speed), 0) AS avg_upload, " +
			"COALESCE(AVG(latency), 0) AS avg_latency").
		Scan(&averages).Error
	if err != nil {
		return stats, err
	}

	stats.AvgDownloadSpeed = utils.Round(averages.AvgDownload, 2)
	stats.AvgUploadSpeed = utils.Round(averages.AvgUpload, 2)
	stats.AvgLatency = utils.Round(averages.AvgLatency, 2)

	return stats, nil
}

// DailyAverageDownload returns the mean download speed for each of the last 'days' UTC days
// ending with the day of 'now'. Days without results are 0.
func DailyAverageDownload(now time.Time, days int) (DailySeries, error) {
	series := DailySeries{Labels: []string{}, Data: []float64{}}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for i := days - 1; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var average float64
		err := db.Model(&SpeedTestResult{}).
			Select("COALESCE(AVG(download_speed), 0)").
			Where("timestamp >= ? AND timestamp < ?", dayStart, dayEnd).
			Scan(&average).Error
		if err != nil {
			return series, err
		}

		series.Labels = append(series.Labels, dayStart.Format(CHART_LABEL_LAYOUT))
		series.Data = append(series.Data, utils.Round(average, 2))
	}

	return series, nil
}
