package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config junta archivo YAML opcional + overrides por env. El archivo es
// para despliegues con docker-compose; en dev alcanza con las env vars.
type Config struct {
	Port string `yaml:"port"`

	// Si DBDSN viene, se usa Postgres como store primario. SQLitePath es el
	// respaldo local durable (y el store primario si no hay Postgres).
	DBDSN      string `yaml:"db_dsn"`
	SQLitePath string `yaml:"sqlite_path"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	SMTP SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Sender     string   `yaml:"sender"`
	Password   string   `yaml:"password"`
	Recipients []string `yaml:"recipients"`
}

// Enabled indica si hay credenciales para mandar el resumen diario.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Sender != "" && c.Password != ""
}

// Load lee el archivo (si existe) y aplica overrides de env. Un path vacío
// o inexistente no es error: todo puede venir por env.
func Load(path string) (Config, error) {
	cfg := Config{Port: "8080"}
	cfg.SMTP.Port = 587

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// sin archivo, seguimos con env
		default:
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	overrideStr(&cfg.Port, "PORT")
	overrideStr(&cfg.DBDSN, "DB_DSN")
	overrideStr(&cfg.SQLitePath, "SQLITE_PATH")
	overrideStr(&cfg.Log.Level, "LOG_LEVEL")
	overrideStr(&cfg.Log.Format, "LOG_FORMAT")
	overrideStr(&cfg.SMTP.Host, "SMTP_HOST")
	overrideStr(&cfg.SMTP.Sender, "SENDER_EMAIL")
	overrideStr(&cfg.SMTP.Password, "SENDER_PASSWORD")
	if v := os.Getenv("SMTP_RECIPIENTS"); v != "" {
		cfg.SMTP.Recipients = splitCSV(v)
	}

	return cfg, nil
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
