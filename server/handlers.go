package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/skybiz/skybiz/server/admin"
	"github.com/skybiz/skybiz/server/models"
)

const (
	CONTACT_SUCCESS_NOTICE  = "Thank you for your message! We will get back to you soon."
	BUSINESS_SUCCESS_NOTICE = "Your quote request has been submitted successfully!"
)

type homePage struct {
	PopularPackages []models.Package
}

type packagesPage struct {
	ResidentialPackages []models.Package
	BusinessPackages    []models.Package
}

type contactPage struct {
	Branches []models.Branch
}

// contactSubmission is the contact form. The phone number is only used for the notification.
type contactSubmission struct {
	models.ContactMessage
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

func (s *Server) health(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"status": "ok"}}, http.StatusOK)
}

func (s *Server) getJwks(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, s.jwks, http.StatusOK)
}

func (s *Server) home(rw http.ResponseWriter, r *http.Request) {
	popular, err := models.PopularPackages()
	if err != nil {
		s.serverError(rw, err)
		return
	}

	s.render(rw, r, "home.html", http.StatusOK, PageData{Title: "Home", Data: homePage{PopularPackages: popular}})
}

func (s *Server) packages(rw http.ResponseWriter, r *http.Request) {
	residential, err := models.PackagesByType(models.RESIDENTIAL_PACKAGE)
	if err != nil {
		s.serverError(rw, err)
		return
	}

	business, err := models.PackagesByType(models.BUSINESS_PACKAGE)
	if err != nil {
		s.serverError(rw, err)
		return
	}

	s.render(rw, r, "packages.html", http.StatusOK, PageData{
		Title: "Packages",
		Data:  packagesPage{ResidentialPackages: residential, BusinessPackages: business},
	})
}

func (s *Server) staticPage(page, title string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.render(rw, r, page, http.StatusOK, PageData{Title: title})
	}
}

func (s *Server) contact(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderContact(rw, r, http.StatusOK, PageData{})
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderContact(rw, r, http.StatusBadRequest, PageData{Errors: map[string]string{"form": err.Error()}})
		return
	}

	submission := contactSubmission{
		ContactMessage: models.ContactMessage{
			Name:    strings.TrimSpace(r.PostForm.Get("name")),
			Email:   strings.TrimSpace(r.PostForm.Get("email")),
			Subject: strings.TrimSpace(r.PostForm.Get("subject")),
			Message: strings.TrimSpace(r.PostForm.Get("message")),
		},
		Phone: strings.TrimSpace(r.PostForm.Get("phone")),
	}

	if err := admin.Validate(submission); err != nil {
		s.renderContact(rw, r, http.StatusBadRequest, PageData{Form: r.PostForm, Errors: fieldErrors(err)})
		return
	}

	message := submission.ContactMessage
	if err := models.CreateContactMessage(&message); err != nil {
		s.serverError(rw, err)
		return
	}
	s.opts.Metrics.Submission("contact")

	if submission.Phone != "" && s.opts.Notifier != nil {
		body := fmt.Sprintf("New contact message from %v (%v, %v): %v",
			message.Name, message.Email, submission.Phone, message.Message)

		if err := s.opts.Notifier.Notify(r.Context(), submission.Phone, body); err != nil {
			logg.Errorf("unable to send WhatsApp notification for contact message %v: %v", message.ID, err)
			s.redirectWithFlash(rw, r, "/contact/", FLASH_ERROR, fmt.Sprintf("Failed to send WhatsApp message: %v", err))
			return
		}
	}

	s.redirectWithFlash(rw, r, "/contact/", FLASH_SUCCESS, CONTACT_SUCCESS_NOTICE)
}

func (s *Server) business(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(rw, r, "business.html", http.StatusOK, PageData{Title: "Business"})
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(rw, r, "business.html", http.StatusBadRequest, PageData{
			Title:  "Business",
			Errors: map[string]string{"form": err.Error()},
		})
		return
	}

	request := models.BusinessQuoteRequest{
		CompanyName:   strings.TrimSpace(r.PostForm.Get("company_name")),
		ContactPerson: strings.TrimSpace(r.PostForm.Get("contact_person")),
		Email:         strings.TrimSpace(r.PostForm.Get("email")),
		Bandwidth:     strings.TrimSpace(r.PostForm.Get("bandwidth")),
		Requirements:  strings.TrimSpace(r.PostForm.Get("requirements")),
	}
	if phone := strings.TrimSpace(r.PostForm.Get("phone")); phone != "" {
		request.Phone = &phone
	}

	if err := admin.Validate(request); err != nil {
		s.render(rw, r, "business.html", http.StatusBadRequest, PageData{
			Title:  "Business",
			Form:   r.PostForm,
			Errors: fieldErrors(err),
		})
		return
	}

	if err := models.CreateBusinessQuoteRequest(&request); err != nil {
		s.serverError(rw, err)
		return
	}
	s.opts.Metrics.Submission("business")

	s.redirectWithFlash(rw, r, "/business/", FLASH_SUCCESS, BUSINESS_SUCCESS_NOTICE)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (s *Server) renderContact(rw http.ResponseWriter, r *http.Request, status int, data PageData) {
	branches, err := models.ActiveBranches()
	if err != nil {
		s.serverError(rw, err)
		return
	}

	data.Title = "Contact Us"
	data.Data = contactPage{Branches: branches}
	s.render(rw, r, "contact.html", status, data)
}
