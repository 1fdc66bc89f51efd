package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Addr               string
		DebugAddr          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Config struct {
		Debug    bool
		TestMode bool
		AppName  string
		Env      string
		Build    string
		WorkDir  string

		SecretKey string
		// BaseURL is the public URL the app is reachable at; calendar
		// subscription links are built from it.
		BaseURL string

		DefaultFromEmail mail.Address
		SendgridAPIKey   string

		// bootstrap admin account, created at startup if missing
		AdminEmail    string
		AdminPassword string

		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
	}
)

// NewConfig loads the app configuration from the environment;
// an optional config/.env.<env> file is loaded first if it exists.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Maestro")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "h2(h!x)#*c2(#yg4h^$cegm2emypoq5-wer)enb$+57=dz&uox")
	v.SetDefault("baseUrl", "http://localhost:8000")
	v.SetDefault("fromName", "Maestro")
	v.SetDefault("fromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":4000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "maestro")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTls", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		WorkDir:          wd,
		SecretKey:        v.GetString("secretKey"),
		BaseURL:          strings.TrimRight(v.GetString("baseUrl"), "/"),
		DefaultFromEmail: mail.Address{Name: v.GetString("fromName"), Address: v.GetString("fromEmail")},
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		AdminEmail:       v.GetString("adminEmail"),
		AdminPassword:    v.GetString("adminPassword"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Addr:               v.GetString("serverAddr"),
			DebugAddr:          v.GetString("serverDebugAddr"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTls"),
		},
	}
}

// Address returns the host:port the database listens on.
func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}
