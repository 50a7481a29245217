package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time is used for timeout durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  PagBank settings configure the checkout gateway client; the
// mail settings select and configure the token-email backend.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    PagBankURL      string        // PagBank checkouts endpoint (sandbox or production)
    PagBankToken    string        // PagBank bearer token; may be empty, the gateway fails fast on use
    NotificationURL string        // callback URL PagBank pushes payment notifications to
    PagBankTimeout  time.Duration // connect/response timeout for gateway calls
    RedirectWebURL  string        // browser redirect target after checkout (web flow)
    RedirectAppURL  string        // deep-link redirect target after checkout (mobile flow)

    MailDriver string // "smtp" or "api"; selects the token-email backend
    SMTPHost   string // SMTP host for the smtp driver
    SMTPPort   string // SMTP port for the smtp driver
    SMTPUser   string // SMTP username, also the From address
    SMTPPass   string // SMTP password
    MailAPIURL string // transactional-email API endpoint for the api driver
    MailAPIKey string // bearer token for the transactional-email API
    MailFrom   string // From address used by the api driver
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The PagBank token is
// deliberately optional here: its absence is reported per request by the
// gateway client so the server can still serve status and auth endpoints.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),  // environment (dev/test/prod)
        Port:           must("APP_PORT"), // port to bind the HTTP server
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),

        PagBankURL:      getenv("PAGBANK_API_URL", "https://sandbox.api.pagseguro.com/checkouts"),
        PagBankToken:    os.Getenv("PAGBANK_TOKEN"),
        NotificationURL: must("PAGBANK_NOTIFICATION_URL"),
        PagBankTimeout:  time.Duration(envIntDefault("PAGBANK_TIMEOUT_SECONDS", 15)) * time.Second,
        RedirectWebURL:  must("REDIRECT_URL_WEB"),
        RedirectAppURL:  getenv("REDIRECT_URL_MOBILE", "hotelbrasileiro://reservas/reservaFinish"),

        MailDriver: getenv("MAIL_DRIVER", "smtp"),
        SMTPHost:   getenv("SMTP_HOST", "smtp.gmail.com"),
        SMTPPort:   getenv("SMTP_PORT", "465"),
        SMTPUser:   os.Getenv("EMAIL_USER"),
        SMTPPass:   os.Getenv("EMAIL_PASS"),
        MailAPIURL: os.Getenv("MAIL_API_URL"),
        MailAPIKey: os.Getenv("MAIL_API_KEY"),
        MailFrom:   getenv("MAIL_FROM", os.Getenv("EMAIL_USER")),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// getenv returns the value of key or def when unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envIntDefault returns the integer value of key or def when unset or invalid.
func envIntDefault(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            return n
        }
    }
    return def
}
