package server

import (
	"context"
	"net/http"

	"github.com/skybiz/skybiz/server/models"
	"github.com/skybiz/skybiz/server/speedtest"
)

const NO_CONNECTION_ERROR = "No internet connection detected"

type speedTestResponse struct {
	Success  bool    `json:"success"`
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
	Ping     float64 `json:"ping"`
	Server   string  `json:"server"`
	Location string  `json:"location"`
}

type speedTestFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// homeSpeedTest measures the server's connection synchronously and stores the result.
func (s *Server) homeSpeedTest(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(rw, speedTestFailure{Error: "Invalid request"}, http.StatusBadRequest)
		return
	}

	if s.opts.Meter == nil {
		logg.Error("no speed test meter configured")
		s.opts.Metrics.SpeedTest(false)
		writeJSON(rw, speedTestFailure{Error: NO_CONNECTION_ERROR}, http.StatusOK)
		return
	}

	ctx := r.Context()
	if s.opts.SpeedTestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SpeedTestTimeout)
		defer cancel()
	}

	result, err := s.opts.Meter.Measure(ctx)
	if err != nil {
		logg.Errorf("speed test failed: %v", err)
		s.opts.Metrics.SpeedTest(false)
		writeJSON(rw, speedTestFailure{Error: NO_CONNECTION_ERROR}, http.StatusOK)
		return
	}
	s.opts.Metrics.SpeedTest(true)

	ip := clientIP(r)
	record := models.SpeedTestResult{
		DownloadSpeed: result.Download,
		UploadSpeed:   result.Upload,
		Latency:       result.Ping,
		IPAddress:     &ip,
	}
	if user := sessionUserFromContext(r.Context()); user != nil {
		record.UserID = &user.ID
	}

	if err = models.CreateSpeedTestResult(&record); err != nil {
		logg.Errorf("unable to store speed test result: %v", err)
		writeJSON(rw, speedTestFailure{Error: "Unable to save speed test result"}, http.StatusInternalServerError)
		return
	}

	server := result.Server
	if server == "" {
		server = speedtest.DEFAULT_SERVER_NAME
	}

	writeJSON(rw, speedTestResponse{
		Success:  true,
		Download: result.Download,
		Upload:   result.Upload,
		Ping:     result.Ping,
		Server:   server,
		Location: result.Location,
	}, http.StatusOK)
}
