package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"github.com/skybiz/skybiz/server/admin"
	"github.com/skybiz/skybiz/server/auth/key"
	"github.com/skybiz/skybiz/server/cron"
	"github.com/skybiz/skybiz/server/logger"
	"github.com/skybiz/skybiz/server/mailer"
	"github.com/skybiz/skybiz/server/metrics"
	"github.com/skybiz/skybiz/server/models"
	"github.com/skybiz/skybiz/server/speedtest"
	"github.com/skybiz/skybiz/server/twilio"
	"github.com/skybiz/skybiz/shared"
	"github.com/skybiz/skybiz/web"
	"github.com/spf13/viper"
)

const SPEED_TEST_PATH = "/home-speed-test/"

var logg = logger.NewLogger("server")

type RequestContextKey string

// Options are the collaborators and settings a Server is built from.
type Options struct {
	KeyPair *key.KeyPair

	// CSRFKey is the 32 byte key for CSRF tokens. Nil disables CSRF protection.
	CSRFKey       []byte
	CookieHashKey []byte
	SecureCookies bool

	Mailer    mailer.Sender
	FromEmail string

	// Notifier sends WhatsApp messages for contact submissions with a phone number. Nil disables it.
	Notifier twilio.Notifier

	Meter            speedtest.Meter
	SpeedTestTimeout time.Duration

	Metrics *metrics.Metrics
	Static  fs.FS
	Now     func() time.Time
}

type Server struct {
	opts      Options
	router    *mux.Router
	templates templateSet
	cookies   *securecookie.SecureCookie
	adminEnv  *admin.Env
	jwks      key.JWKS
}

// New builds the HTTP handler for the site. The database must already be migrated.
func New(opts Options) (*Server, error) {
	if opts.KeyPair == nil {
		return nil, errors.New("a session key pair is required")
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.CookieHashKey == nil {
		opts.CookieHashKey = securecookie.GenerateRandomKey(32)
	}
	if opts.Static == nil {
		opts.Static = web.FS
	}

	templates, err := parseTemplates(web.FS)
	if err != nil {
		return nil, err
	}

	publicKey, err := opts.KeyPair.JWK()
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:      opts,
		templates: templates,
		cookies:   securecookie.New(opts.CookieHashKey, nil),
		adminEnv: &admin.Env{
			Mailer:    opts.Mailer,
			FromEmail: opts.FromEmail,
			Branches:  &admin.BranchService{},
		},
		jwks: key.ExportJWKAsJWKS(publicKey),
	}
	s.router = s.routes()

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) now() time.Time {
	return s.opts.Now()
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/.well-known/jwks.json", s.getJwks).Methods(http.MethodGet)

	staticFiles, err := fs.Sub(s.opts.Static, "static")
	if err == nil {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles))))
	}

	router.HandleFunc("/", s.home).Methods(http.MethodGet)
	router.HandleFunc("/packages/", s.packages).Methods(http.MethodGet)
	router.HandleFunc("/services/", s.staticPage("services.html", "Services")).Methods(http.MethodGet)
	router.HandleFunc("/about/", s.staticPage("about.html", "About Us")).Methods(http.MethodGet)
	router.HandleFunc("/faq/", s.staticPage("faq.html", "FAQ")).Methods(http.MethodGet)
	router.HandleFunc("/business/", s.business).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/contact/", s.contact).Methods(http.MethodGet, http.MethodPost)

	// Any method, so non-POST requests get the JSON failure body
	router.HandleFunc(SPEED_TEST_PATH, s.homeSpeedTest)

	router.HandleFunc("/admin/", s.adminPanel).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/admin/dashboard/", s.dashboard).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/dashboard/", s.dashboard).Methods(http.MethodGet, http.MethodPost)

	router.Use(s.loggingMiddleware)
	router.Use(s.sessionMiddleware)
	if s.opts.CSRFKey != nil {
		router.Use(csrfExemptMiddleware(SPEED_TEST_PATH, "/health", "/metrics"))
		router.Use(csrf.Protect(s.opts.CSRFKey,
			csrf.Secure(s.opts.SecureCookies),
			csrf.Path("/"),
			csrf.FieldName("csrfmiddlewaretoken"),
		))
	}

	return router
}

// Start runs the server from config until it receives SIGINT or SIGTERM.
func Start(config *viper.Viper, devMode bool) {
	serverConfig, configDir, err := setup(config, devMode)
	fatalOnError(err)

	opts, err := optionsFromConfig(serverConfig, devMode)
	fatalOnError(err)

	s, err := New(opts)
	fatalOnError(err)

	scheduler := cron.NewScheduler(serverConfig.Skybiz.Cron.TimeZone)
	err = registerJobs(scheduler, serverConfig, configDir)
	fatalOnError(err)
	scheduler.StartAsync()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%v", serverConfig.Skybiz.Listener.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go serve(httpServer)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	cleanup(scheduler, httpServer)
}

// CreateStaffUser runs the same setup as Start, then adds a staff superuser. It is how the
// first admin account is made.
func CreateStaffUser(config *viper.Viper, devMode bool, username, email, password string) (string, error) {
	if _, _, err := setup(config, devMode); err != nil {
		return "", err
	}

	form := url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
		"role":     {admin.ROLE_SUPERADMIN},
	}

	result, err := admin.Dispatch(context.Background(), &admin.Env{}, admin.ACTION_ADD_USER, form)
	if err != nil {
		return "", errors.New(result.Notice)
	}

	return result.Notice, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// setup validates the config, then migrates the database and creates the user groups.
func setup(config *viper.Viper, devMode bool) (shared.ServerConfig, string, error) {
	serverConfig := shared.ServerConfig{}

	if err := config.Unmarshal(&serverConfig); err != nil {
		return serverConfig, "", err
	}

	if err := validator.New().Struct(serverConfig); err != nil {
		return serverConfig, "", err
	}

	configDir := configDirectory(devMode)

	if err := models.AutoMigrate(serverConfig.Database, configDir); err != nil {
		return serverConfig, "", err
	}

	return serverConfig, configDir, models.EnsureGroups()
}

func optionsFromConfig(config shared.ServerConfig, devMode bool) (Options, error) {
	opts := Options{
		SecureCookies:    config.Skybiz.SecureCookies,
		FromEmail:        config.Mail.From,
		Meter:            speedtest.NewSpeedtestNet(),
		SpeedTestTimeout: config.SpeedTest.Timeout,
		Metrics:          metrics.New(),
	}

	var err error
	if config.Skybiz.PrivateKeyPem != "" {
		opts.KeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(config.Skybiz.PrivateKeyPem)
	} else {
		logg.Warn("skybiz.privateKeyPem is not set, sessions will not survive a restart")
		opts.KeyPair, err = key.GenerateKeyPair()
	}
	if err != nil {
		return opts, err
	}

	if config.Skybiz.CSRFKey != "" {
		opts.CSRFKey = []byte(config.Skybiz.CSRFKey)
	} else {
		opts.CSRFKey = make([]byte, 32)
		if _, err = rand.Read(opts.CSRFKey); err != nil {
			return opts, err
		}
	}
	opts.CookieHashKey = opts.CSRFKey

	switch {
	case config.Mail.Host != "":
		opts.Mailer = mailer.NewSMTPSender(config.Mail)
	case devMode:
		logg.Warn("mail.host is not set, replies are only logged")
		opts.Mailer = mailer.LogSender{Logf: logg.Infof}
	default:
		logg.Warn("mail.host is not set, replies cannot be sent")
		opts.Mailer = mailer.UnconfiguredSender{}
	}

	if config.Twilio.EnableWhatsApp {
		opts.Notifier = twilio.NewClient(config.Twilio)
	}

	return opts, nil
}

func registerJobs(scheduler *gocron.Scheduler, config shared.ServerConfig, configDir string) error {
	if !config.Google.Storage.EnableSqliteBackup {
		return nil
	}

	if config.Database.Driver != "sqlite" {
		logg.Warn("google.storage.enableSqliteBackup only applies to the sqlite driver")
		return nil
	}

	job, err := newSqliteBackupJob(config.Google, configDir)
	if err != nil {
		return err
	}

	_, err = scheduler.Cron(config.Google.Storage.SqliteBackupSchedule).Tag("backupSqliteDb").Do(job.run)
	return err
}
