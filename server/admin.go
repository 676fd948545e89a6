package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/skybiz/skybiz/server/admin"
	"github.com/skybiz/skybiz/server/models"
)

const (
	ADMIN_PATH     = "/admin/"
	DASHBOARD_PATH = "/dashboard/"

	ADMIN_REQUIRED_NOTICE = "You must be an admin to access this page."
)

type adminPanelPage struct {
	Users            []models.User
	Packages         []models.Package
	News             []models.NewsTicker
	Messages         []models.ContactMessage
	BusinessRequests []models.BusinessQuoteRequest
	SpeedTests       []models.SpeedTestResult
	Branches         []models.Branch
}

// adminPanel lists every managed record on GET and runs one admin action per POST.
func (s *Server) adminPanel(rw http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.adminAction(rw, r)
		return
	}

	if !isStaff(r) {
		s.redirectWithFlash(rw, r, DASHBOARD_PATH, FLASH_ERROR, ADMIN_REQUIRED_NOTICE)
		return
	}

	page, err := loadAdminPanel()
	if err != nil {
		s.serverError(rw, err)
		return
	}

	s.render(rw, r, "admin_panel.html", http.StatusOK, PageData{Title: "Admin Panel", Data: page})
}

func (s *Server) adminAction(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(rw, r, ADMIN_PATH, FLASH_ERROR, "Invalid form submission.")
		return
	}

	action := admin.Action(r.PostForm.Get("action"))
	if !admin.Known(action) {
		http.Redirect(rw, r, ADMIN_PATH, http.StatusSeeOther)
		return
	}

	if admin.RequiresStaff(action) && !isStaff(r) {
		s.redirectWithFlash(rw, r, DASHBOARD_PATH, FLASH_ERROR, ADMIN_REQUIRED_NOTICE)
		return
	}

	result, err := admin.Dispatch(r.Context(), s.adminEnv, action, r.PostForm)
	s.opts.Metrics.AdminAction(string(action), err == nil)
	if err != nil {
		s.redirectWithFlash(rw, r, ADMIN_PATH, FLASH_ERROR, result.Notice)
		return
	}

	if result.User != nil {
		if err = s.startSession(rw, result.User); err != nil {
			s.serverError(rw, err)
			return
		}
	}

	if result.EndSession {
		s.endSession(rw)
		s.redirectWithFlash(rw, r, "/", FLASH_SUCCESS, result.Notice)
		return
	}

	s.redirectWithFlash(rw, r, ADMIN_PATH, FLASH_SUCCESS, result.Notice)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func loadAdminPanel() (*adminPanelPage, error) {
	var err error
	page := &adminPanelPage{}

	loaders := []func() error{
		func() error { page.Users, err = models.AllUsers(); return err },
		func() error { page.Packages, err = models.AllPackages(); return err },
		func() error { page.News, err = models.AllNews(); return err },
		func() error { page.Messages, err = models.AllContactMessages(); return err },
		func() error { page.BusinessRequests, err = models.AllBusinessQuoteRequests(); return err },
		func() error { page.SpeedTests, err = models.AllSpeedTestResults(); return err },
		func() error { page.Branches, err = models.AllBranches(); return err },
	}

	for _, load := range loaders {
		if err := load(); err != nil {
			return nil, err
		}
	}

	return page, nil
}

// isCredentialError reports whether err is a rejected login rather than a failure.
func isCredentialError(err error) bool {
	return errors.Is(err, admin.ErrInvalidCredentials) || errors.Is(err, admin.ErrNotStaff)
}
