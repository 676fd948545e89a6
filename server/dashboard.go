package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/skybiz/skybiz/server/admin"
	"github.com/skybiz/skybiz/server/models"
)

const (
	INVALID_LOGIN_NOTICE        = "Invalid username or password."
	DASHBOARD_STAFF_NOTICE      = "You must be an admin to access this dashboard."
	MANAGE_BRANCHES_NOTICE      = "You must be an admin to manage branches."
	DELETE_BRANCHES_NOTICE      = "You must be an admin to delete branches."
	INVALID_BRANCH_FORM_NOTICE  = "Failed to save branch. Please check the form."
	DASHBOARD_LOGGED_OUT_NOTICE = "You have been logged out."
)

type dashboardPage struct {
	*models.DashboardStats
	Branches []models.Branch
}

// dashboard shows the login form to anonymous visitors and the statistics to staff.
func (s *Server) dashboard(rw http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.dashboardAction(rw, r)
		return
	}

	user := sessionUserFromContext(r.Context())
	if user == nil {
		s.render(rw, r, "dashboard.html", http.StatusOK, PageData{Title: "Dashboard Login"})
		return
	}

	if !user.IsStaff {
		s.render(rw, r, "dashboard.html", http.StatusForbidden, PageData{
			Title:  "Dashboard Login",
			Errors: map[string]string{"form": DASHBOARD_STAFF_NOTICE},
		})
		return
	}

	stats, err := models.CurrentDashboardStats(s.now())
	if err != nil {
		s.serverError(rw, err)
		return
	}

	branches, err := models.AllBranches()
	if err != nil {
		s.serverError(rw, err)
		return
	}

	s.render(rw, r, "dashboard.html", http.StatusOK, PageData{
		Title: "Dashboard",
		Data:  dashboardPage{DashboardStats: stats, Branches: branches},
	})
}

func (s *Server) dashboardAction(rw http.ResponseWriter, r *http.Request) {
	self := r.URL.Path

	if err := r.ParseForm(); err != nil {
		s.redirectWithFlash(rw, r, self, FLASH_ERROR, "Invalid form submission.")
		return
	}

	action := admin.Action(r.PostForm.Get("action"))
	switch action {
	case admin.ACTION_LOGIN:
		user, err := admin.Authenticate(r.PostForm.Get("username"), r.PostForm.Get("password"))
		if err != nil {
			s.opts.Metrics.AdminAction(string(action), false)
			if !isCredentialError(err) {
				s.serverError(rw, err)
				return
			}

			notice := INVALID_LOGIN_NOTICE
			if errors.Is(err, admin.ErrNotStaff) {
				notice = DASHBOARD_STAFF_NOTICE
			}
			s.redirectWithFlash(rw, r, self, FLASH_ERROR, notice)
			return
		}

		if err = s.startSession(rw, user); err != nil {
			s.serverError(rw, err)
			return
		}
		s.opts.Metrics.AdminAction(string(action), true)
		http.Redirect(rw, r, self, http.StatusSeeOther)

	case admin.ACTION_LOGOUT:
		s.endSession(rw)
		s.redirectWithFlash(rw, r, "/", FLASH_SUCCESS, DASHBOARD_LOGGED_OUT_NOTICE)

	case admin.ACTION_SAVE_BRANCH, admin.ACTION_DELETE_BRANCH:
		s.dashboardBranchAction(rw, r, action)

	default:
		http.Redirect(rw, r, self, http.StatusSeeOther)
	}
}

func (s *Server) dashboardBranchAction(rw http.ResponseWriter, r *http.Request, action admin.Action) {
	self := r.URL.Path

	if !isStaff(r) {
		notice := MANAGE_BRANCHES_NOTICE
		if action == admin.ACTION_DELETE_BRANCH {
			notice = DELETE_BRANCHES_NOTICE
		}
		s.redirectWithFlash(rw, r, self, FLASH_ERROR, notice)
		return
	}

	result, err := admin.Dispatch(r.Context(), s.adminEnv, action, r.PostForm)
	s.opts.Metrics.AdminAction(string(action), err == nil)
	if err != nil {
		notice := result.Notice
		var validationErr *admin.ValidationError
		if errors.As(err, &validationErr) {
			notice = INVALID_BRANCH_FORM_NOTICE
		}
		s.redirectWithFlash(rw, r, self, FLASH_ERROR, notice)
		return
	}

	s.redirectWithFlash(rw, r, self, FLASH_SUCCESS, result.Notice)
}
