package shared

import "time"

type ServerConfig struct {
	Skybiz    SkybizConfig    `mapstructure:"skybiz" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Mail      MailConfig      `mapstructure:"mail"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	SpeedTest SpeedTestConfig `mapstructure:"speedtest"`
	Google    GoogleConfig    `mapstructure:"google"`
}

type SkybizConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem"`
	CSRFKey       string         `mapstructure:"csrfKey" validate:"omitempty,len=32"`
	SecureCookies bool           `mapstructure:"secureCookies"`
	Cron          CronConfig     `mapstructure:"cron"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`

	// DSN is required for postgres. For sqlite it defaults to a file in the
	// server's config directory.
	DSN string `mapstructure:"dsn"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"omitempty,email"`
}

type TwilioConfig struct {
	AccountSid     string `mapstructure:"accountSid" validate:"required_with=EnableWhatsApp"`
	AuthToken      string `mapstructure:"authToken" validate:"required_with=EnableWhatsApp"`
	WhatsAppNumber string `mapstructure:"whatsAppNumber" validate:"required_with=EnableWhatsApp"`
	EnableWhatsApp bool   `mapstructure:"enableWhatsApp"`
}

type SpeedTestConfig struct {
	// Zero means the measurement is only bounded by the client connection.
	Timeout time.Duration `mapstructure:"timeout"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket               string `mapstructure:"bucket" validate:"required_with=EnableSqliteBackup"`
	Prefix               string `mapstructure:"prefix" validate:"required_with=EnableSqliteBackup"`
	SqliteBackupSchedule string `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackup"`
	EnableSqliteBackup   bool   `mapstructure:"enableSqliteBackup"`
}
