package config

// SERVER_YML is written to dev/server.yml the first time the server runs with --dev.
const SERVER_YML = `
skybiz:
  # Left empty in dev, a throwaway key pair is generated on every start
  privateKeyPem:
  csrfKey: "skybiz-dev-csrf-key-32-bytes-ok!"
  secureCookies: false
  cron:
    timeZone: "UTC"
  listener:
    port: 8000

database:
  driver: sqlite
  dsn:

mail:
  host:
  port: 587
  username:
  password:
  from: "noreply@skybiz.example"

twilio:
  accountSid:
  authToken:
  whatsAppNumber:
  enableWhatsApp: false

speedtest:
  timeout: 0s

google:
  applicationCredentials:
  storage:
    bucket: "skybiz"
    prefix: "skybiz-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackup: false
`
