package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	JwtSecret   string `yaml:"jwt_secret"`
	JwtExpireHr int    `yaml:"jwt_expire_hr"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type BackupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Cron     string `yaml:"cron"`
	KeepDays int    `yaml:"keep_days"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Backup   BackupConfig `yaml:"backup"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetBackupDir() string {
	return filepath.Join(c.System.Workdir, "backup")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0755)
	_ = os.MkdirAll(c.GetBackupDir(), 0755)
	_ = os.MkdirAll(c.GetDataDir(), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "stockpos",
		Location: "America/Sao_Paulo",
		Workdir:  "/var/stockpos",
		Debug:    true,
	},
	Web: WebConfig{
		Host:        "0.0.0.0",
		Port:        1816,
		JwtSecret:   "9b6de5cc-stockpos-0cc9f-8f41f",
		JwtExpireHr: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "stockpos",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/stockpos/stockpos.log",
	},
	Backup: BackupConfig{
		Enabled:  false,
		Cron:     "@daily",
		KeepDays: 30,
	},
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

// LoadConfig reads the YAML configuration file when present and applies
// environment overrides on top. A missing file leaves the defaults in place.
func LoadConfig(cfile string) *AppConfig {
	_ = godotenv.Load()

	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
				os.Exit(1)
			}
		}
	}

	setEnvValue("STOCKPOS_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("STOCKPOS_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("STOCKPOS_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("STOCKPOS_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("STOCKPOS_WEB_PORT", &cfg.Web.Port)
	setEnvValue("STOCKPOS_WEB_JWT_SECRET", &cfg.Web.JwtSecret)

	setEnvValue("STOCKPOS_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("STOCKPOS_DB_PORT", &cfg.Database.Port)
	setEnvValue("STOCKPOS_DB_NAME", &cfg.Database.Name)
	setEnvValue("STOCKPOS_DB_USER", &cfg.Database.User)
	setEnvValue("STOCKPOS_DB_PASSWD", &cfg.Database.Passwd)

	setEnvValue("STOCKPOS_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("STOCKPOS_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("STOCKPOS_LOGGER_FILENAME", &cfg.Logger.Filename)

	setEnvBoolValue("STOCKPOS_BACKUP_ENABLED", &cfg.Backup.Enabled)
	setEnvValue("STOCKPOS_BACKUP_CRON", &cfg.Backup.Cron)
	setEnvIntValue("STOCKPOS_BACKUP_KEEP_DAYS", &cfg.Backup.KeepDays)

	cfg.initDirs()
	return cfg
}
