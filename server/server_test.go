package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/skybiz/skybiz/server/auth"
	"github.com/skybiz/skybiz/server/auth/key"
	"github.com/skybiz/skybiz/server/mailer"
	"github.com/skybiz/skybiz/server/models"
	"github.com/skybiz/skybiz/server/speedtest"
	"github.com/skybiz/skybiz/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testKeyPair *key.KeyPair

func init() {
	auth.PasswordHashCost = bcrypt.MinCost

	var err error
	testKeyPair, err = key.GenerateKeyPair()
	if err != nil {
		panic(err)
	}
}

type stubNotifier struct {
	to, msg string
	calls   int
	err     error
}

func (n *stubNotifier) Notify(ctx context.Context, to, msg string) error {
	n.calls++
	n.to, n.msg = to, msg
	return n.err
}

type stubMeter struct {
	result *speedtest.Result
	err    error
	calls  int
}

func (m *stubMeter) Measure(ctx context.Context) (*speedtest.Result, error) {
	m.calls++
	return m.result, m.err
}

type stubSender struct{}

func (stubSender) Send(ctx context.Context, from, to, subject, body string) error {
	return nil
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	models.InitializeTestDb()

	if opts.KeyPair == nil {
		opts.KeyPair = testKeyPair
	}
	if opts.Mailer == nil {
		opts.Mailer = stubSender{}
	}

	s, err := New(opts)
	require.Nil(t, err, "unable to create server")
	return s
}

func serveRequest(s *Server, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// flashes decodes the notices queued by a response.
func flashes(t *testing.T, s *Server, rec *httptest.ResponseRecorder) []Flash {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == FLASH_COOKIE {
			req.AddCookie(cookie)
		}
	}
	return s.readFlashes(req)
}

func createUser(t *testing.T, username, password string, staff bool) *models.User {
	t.Helper()

	user := &models.User{Username: username, Email: username + "@skybiz.com", Password: password, IsStaff: staff, IsSuperuser: staff}
	require.Nil(t, models.CreateUser(user), "unable to create user")
	return user
}

func sessionCookie(t *testing.T, s *Server, user *models.User) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.Nil(t, s.startSession(rec, user))
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SESSION_COOKIE {
			return cookie
		}
	}

	t.Fatal("no session cookie set")
	return nil
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()

	payload := map[string]interface{}{}
	require.Nil(t, json.NewDecoder(body).Decode(&payload))
	return payload
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec.Body)["success"])
	assert.NotEmpty(t, rec.Header().Get(REQUEST_ID_HEADER), "every response should carry a request id")
}

func TestPublicPagesRender(t *testing.T) {
	s := newTestServer(t, Options{})

	features := "- **Unlimited** data\n- Free router"
	require.Nil(t, models.CreatePackage(&models.Package{
		Name: "Home Fibre", PackageType: models.RESIDENTIAL_PACKAGE, DownloadSpeed: 100, UploadSpeed: 50,
		PriceCents: 4999, Features: &features, IsPopular: true,
	}))
	require.Nil(t, models.CreateNews(&models.NewsTicker{Message: "New towers in Ikeja", IsActive: true}))

	for _, path := range []string{"/", "/packages/", "/services/", "/about/", "/faq/", "/business/", "/contact/"} {
		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "New towers in Ikeja", "%v should show the news ticker", path)
	}

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "Home Fibre")
	assert.Contains(t, rec.Body.String(), "49.99")
	assert.Contains(t, rec.Body.String(), "<strong>Unlimited</strong>", "features should be rendered from markdown")
}

func TestContactSubmission(t *testing.T) {
	t.Run("message is stored even when the WhatsApp notification fails", func(t *testing.T) {
		notifier := &stubNotifier{err: errors.New("twilio is down")}
		s := newTestServer(t, Options{Notifier: notifier})

		rec := serveRequest(s, postForm("/contact/", url.Values{
			"name": {"Ann"}, "email": {"ann@example.com"}, "phone": {"+2348000000000"},
			"subject": {"Outage"}, "message": {"No signal since morning"},
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/contact/", rec.Header().Get("Location"))
		assert.Equal(t, []Flash{{FLASH_ERROR, "Failed to send WhatsApp message: twilio is down"}}, flashes(t, s, rec))

		assert.Equal(t, 1, notifier.calls)
		assert.Equal(t, "+2348000000000", notifier.to)
		assert.Equal(t, "New contact message from Ann (ann@example.com, +2348000000000): No signal since morning", notifier.msg)

		messages, err := models.AllContactMessages()
		require.Nil(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "Outage", messages[0].Subject)
		assert.False(t, messages[0].ReplySent)
	})

	t.Run("without a phone no notification is sent", func(t *testing.T) {
		notifier := &stubNotifier{}
		s := newTestServer(t, Options{Notifier: notifier})

		rec := serveRequest(s, postForm("/contact/", url.Values{
			"name": {"Ann"}, "email": {"ann@example.com"}, "subject": {"Hello"}, "message": {"Hi"},
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, []Flash{{FLASH_SUCCESS, CONTACT_SUCCESS_NOTICE}}, flashes(t, s, rec))
		assert.Equal(t, 0, notifier.calls)
	})

	t.Run("invalid submissions are not stored", func(t *testing.T) {
		s := newTestServer(t, Options{})

		rec := serveRequest(s, postForm("/contact/", url.Values{
			"name": {"Ann"}, "email": {"not-an-email"}, "subject": {"Hello"},
		}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Enter a valid email address.")
		assert.Contains(t, rec.Body.String(), "This field is required.")

		messages, err := models.AllContactMessages()
		require.Nil(t, err)
		assert.Empty(t, messages)
	})
}

func TestBusinessQuoteSubmission(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := serveRequest(s, postForm("/business/", url.Values{
		"company_name": {"Acme"}, "contact_person": {"Jane"}, "email": {"j@acme.com"},
		"bandwidth": {"1Gbps"}, "requirements": {"redundant uplink"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/business/", rec.Header().Get("Location"))
	assert.Equal(t, []Flash{{FLASH_SUCCESS, BUSINESS_SUCCESS_NOTICE}}, flashes(t, s, rec))

	requests, err := models.AllBusinessQuoteRequests()
	require.Nil(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "Acme", requests[0].CompanyName)
	assert.Equal(t, "redundant uplink", requests[0].Requirements)
	assert.Nil(t, requests[0].Phone)

	metrics := serveRequest(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), `skybiz_form_submissions_total{form="business"} 1`)
}

func TestHomeSpeedTest(t *testing.T) {
	t.Run("only POST is accepted", func(t *testing.T) {
		meter := &stubMeter{}
		s := newTestServer(t, Options{Meter: meter})

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, SPEED_TEST_PATH, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, map[string]interface{}{"success": false, "error": "Invalid request"}, decodeBody(t, rec.Body))
		assert.Equal(t, 0, meter.calls)

		results, err := models.AllSpeedTestResults()
		require.Nil(t, err)
		assert.Empty(t, results)
	})

	t.Run("measurement failure stores nothing", func(t *testing.T) {
		s := newTestServer(t, Options{Meter: &stubMeter{err: speedtest.ErrNoServers}})

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, SPEED_TEST_PATH, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]interface{}{"success": false, "error": NO_CONNECTION_ERROR}, decodeBody(t, rec.Body))

		results, err := models.AllSpeedTestResults()
		require.Nil(t, err)
		assert.Empty(t, results)
	})

	t.Run("result is stored with the session user and client ip", func(t *testing.T) {
		meter := &stubMeter{result: &speedtest.Result{Download: 93.41, Upload: 40.2, Ping: 12.3, Location: "Lagos, Nigeria"}}
		s := newTestServer(t, Options{Meter: meter, SpeedTestTimeout: time.Minute})
		user := createUser(t, "tolu", "secret", false)

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, SPEED_TEST_PATH, nil), sessionCookie(t, s, user))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]interface{}{
			"success": true, "download": 93.41, "upload": 40.2, "ping": 12.3,
			"server": speedtest.DEFAULT_SERVER_NAME, "location": "Lagos, Nigeria",
		}, decodeBody(t, rec.Body))

		results, err := models.AllSpeedTestResults()
		require.Nil(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 93.41, results[0].DownloadSpeed)
		require.NotNil(t, results[0].UserID)
		assert.Equal(t, user.ID, *results[0].UserID)
		require.NotNil(t, results[0].IPAddress)
		assert.Equal(t, "192.0.2.1", *results[0].IPAddress)
	})
}

func TestAdminPanelRequiresStaff(t *testing.T) {
	s := newTestServer(t, Options{})
	member := createUser(t, "member", "secret", false)

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, ADMIN_PATH, nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DASHBOARD_PATH, rec.Header().Get("Location"))
	assert.Equal(t, []Flash{{FLASH_ERROR, ADMIN_REQUIRED_NOTICE}}, flashes(t, s, rec))

	for _, cookies := range [][]*http.Cookie{nil, {sessionCookie(t, s, member)}} {
		rec = serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"save_news"}, "message": {"Free upgrades"}}), cookies...)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, DASHBOARD_PATH, rec.Header().Get("Location"))
	}

	news, err := models.AllNews()
	require.Nil(t, err)
	assert.Empty(t, news, "actions must not run without a staff session")
}

func TestAdminLoginActionsAndLogout(t *testing.T) {
	s := newTestServer(t, Options{})
	createUser(t, "admin", "secret", true)

	rec := serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"login"}, "username": {"admin"}, "password": {"secret"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, ADMIN_PATH, rec.Header().Get("Location"))

	var session *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SESSION_COOKIE {
			session = cookie
		}
	}
	require.NotNil(t, session, "login should start a session")
	assert.True(t, session.HttpOnly)

	rec = serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"save_news"}, "message": {"Free upgrades"}}), session)
	assert.Equal(t, []Flash{{FLASH_SUCCESS, "News added!"}}, flashes(t, s, rec))

	rec = serveRequest(s, httptest.NewRequest(http.MethodGet, ADMIN_PATH, nil), session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Free upgrades")

	rec = serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"carousel"}}), session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, ADMIN_PATH, rec.Header().Get("Location"))
	assert.Empty(t, flashes(t, s, rec), "unknown actions are a no-op")

	rec = serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"delete_package"}, "package_id": {"42"}}), session)
	assert.Equal(t, []Flash{{FLASH_ERROR, "Package not found."}}, flashes(t, s, rec))

	rec = serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"logout"}}), session)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SESSION_COOKIE {
			assert.True(t, cookie.MaxAge < 0, "logout should clear the session cookie")
		}
	}
}

func TestAdminLoginRejectsNonStaff(t *testing.T) {
	s := newTestServer(t, Options{})
	createUser(t, "member", "secret", false)

	rec := serveRequest(s, postForm(ADMIN_PATH, url.Values{"action": {"login"}, "username": {"member"}, "password": {"secret"}}))

	assert.Equal(t, []Flash{{FLASH_ERROR, "Invalid credentials or not an admin user."}}, flashes(t, s, rec))
	for _, cookie := range rec.Result().Cookies() {
		assert.NotEqual(t, SESSION_COOKIE, cookie.Name)
	}
}

func TestOptionsFromConfigMailer(t *testing.T) {
	opts, err := optionsFromConfig(shared.ServerConfig{}, false)
	require.Nil(t, err)
	assert.IsType(t, mailer.UnconfiguredSender{}, opts.Mailer, "without a host replies must fail")

	opts, err = optionsFromConfig(shared.ServerConfig{}, true)
	require.Nil(t, err)
	assert.IsType(t, mailer.LogSender{}, opts.Mailer, "dev mode only logs replies")

	opts, err = optionsFromConfig(shared.ServerConfig{Mail: shared.MailConfig{Host: "smtp.skybiz.com", Port: 587}}, false)
	require.Nil(t, err)
	assert.IsType(t, &mailer.SMTPSender{}, opts.Mailer)
}

func TestSessionCookieFollowsServerClock(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	s := newTestServer(t, Options{Now: func() time.Time { return now }})
	staff := createUser(t, "admin", "secret", true)
	session := sessionCookie(t, s, staff)

	req := httptest.NewRequest(http.MethodGet, DASHBOARD_PATH, nil)
	req.AddCookie(session)
	user := s.userFromSessionCookie(req)
	require.NotNil(t, user, "a fresh cookie should resolve on the server clock")
	assert.Equal(t, staff.ID, user.ID)
	assert.True(t, user.IsStaff)

	now = now.Add(auth.SESSION_LIFETIME + time.Minute)
	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, DASHBOARD_PATH, nil), session)
	assert.Contains(t, rec.Body.String(), "Staff login", "an expired cookie is anonymous")
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	s := newTestServer(t, Options{Now: func() time.Time { return now }})
	staff := createUser(t, "admin", "secret", true)
	createUser(t, "member", "secret", false)

	t.Run("anonymous visitors get the login form", func(t *testing.T) {
		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, DASHBOARD_PATH, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Staff login")
	})

	t.Run("login notices", func(t *testing.T) {
		rec := serveRequest(s, postForm(DASHBOARD_PATH, url.Values{"action": {"login"}, "username": {"admin"}, "password": {"wrong"}}))
		assert.Equal(t, []Flash{{FLASH_ERROR, INVALID_LOGIN_NOTICE}}, flashes(t, s, rec))

		rec = serveRequest(s, postForm(DASHBOARD_PATH, url.Values{"action": {"login"}, "username": {"member"}, "password": {"secret"}}))
		assert.Equal(t, []Flash{{FLASH_ERROR, DASHBOARD_STAFF_NOTICE}}, flashes(t, s, rec))

		rec = serveRequest(s, postForm("/admin/dashboard/", url.Values{"action": {"login"}, "username": {"admin"}, "password": {"secret"}}))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/dashboard/", rec.Header().Get("Location"))
	})

	t.Run("branch actions need staff", func(t *testing.T) {
		branch := url.Values{
			"action": {"save_branch"}, "name": {"Ikeja"}, "address": {"1 Allen Ave"}, "city": {"Lagos"},
			"state": {"Lagos"}, "phone": {"0800"}, "email": {"ikeja@skybiz.com"},
		}

		rec := serveRequest(s, postForm(DASHBOARD_PATH, branch))
		assert.Equal(t, []Flash{{FLASH_ERROR, MANAGE_BRANCHES_NOTICE}}, flashes(t, s, rec))

		rec = serveRequest(s, postForm(DASHBOARD_PATH, url.Values{"action": {"delete_branch"}, "branch_id": {"1"}}))
		assert.Equal(t, []Flash{{FLASH_ERROR, DELETE_BRANCHES_NOTICE}}, flashes(t, s, rec))

		branches, err := models.AllBranches()
		require.Nil(t, err)
		assert.Empty(t, branches)

		session := sessionCookie(t, s, staff)

		invalid := url.Values{"action": {"save_branch"}, "name": {"Ikeja"}}
		rec = serveRequest(s, postForm(DASHBOARD_PATH, invalid), session)
		assert.Equal(t, []Flash{{FLASH_ERROR, INVALID_BRANCH_FORM_NOTICE}}, flashes(t, s, rec))

		rec = serveRequest(s, postForm(DASHBOARD_PATH, branch), session)
		assert.Equal(t, []Flash{{FLASH_SUCCESS, "Branch added successfully."}}, flashes(t, s, rec))
	})

	t.Run("staff see the statistics", func(t *testing.T) {
		require.Nil(t, models.CreateSpeedTestResult(&models.SpeedTestResult{DownloadSpeed: 80, UploadSpeed: 20, Latency: 10, Timestamp: now}))

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, DASHBOARD_PATH, nil), sessionCookie(t, s, staff))

		body := rec.Body.String()
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, body, "Average download, last 7 days")
		assert.Contains(t, body, "2024-03-04")
		assert.Contains(t, body, "2024-03-10")
		assert.Contains(t, body, "80.00")
		assert.Contains(t, body, "Ikeja")
	})
}

func TestCSRFProtection(t *testing.T) {
	s := newTestServer(t, Options{
		CSRFKey: []byte("0123456789abcdef0123456789abcdef"),
		Meter:   &stubMeter{err: speedtest.ErrNoServers},
	})

	rec := serveRequest(s, postForm("/contact/", url.Values{
		"name": {"Ann"}, "email": {"ann@example.com"}, "subject": {"Hello"}, "message": {"Hi"},
	}))
	assert.Equal(t, http.StatusForbidden, rec.Code, "forms need a CSRF token")

	rec = serveRequest(s, httptest.NewRequest(http.MethodPost, SPEED_TEST_PATH, nil))
	assert.Equal(t, http.StatusOK, rec.Code, "the speed test is exempt")

	rec = serveRequest(s, httptest.NewRequest(http.MethodGet, "/contact/", nil))
	assert.Contains(t, rec.Body.String(), `name="csrfmiddlewaretoken"`)
}
