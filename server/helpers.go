package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/skybiz/skybiz/server/admin"
	"github.com/skybiz/skybiz/utils"
)

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	writeJSON(rw, payLoad, statusCode)
}

func writeJSON(rw http.ResponseWriter, body interface{}, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		logg.Errorf("writeJSON: %v", err)
	}
}

// clientIP is the host part of the connection's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return "Unknown"
	}
	return host
}

// fieldErrors maps each invalid field to its first message for re-rendering a form.
func fieldErrors(err error) map[string]string {
	errs := map[string]string{}

	var validationErr *admin.ValidationError
	if !errors.As(err, &validationErr) {
		return errs
	}

	for _, field := range validationErr.Fields {
		if _, ok := errs[field.Field]; !ok {
			errs[field.Field] = field.Message
		}
	}
	return errs
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("skybiz server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(scheduler *gocron.Scheduler, server *http.Server) {
	// Stop scheduled jobs before the database goes away
	scheduler.Stop()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("skybiz server shutdown failed:%+s", err)
	}

	logg.Infof("skybiz server stopped properly")
}

// configDirectory retrieves the directory to store skybiz data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	configFolderName := "skybiz"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
