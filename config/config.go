package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	Secret  string `yaml:"secret" json:"secret"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AIConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Apikey   string `yaml:"apikey" json:"apikey"`
}

type MailConfig struct {
	SmtpHost string `yaml:"smtp_host" json:"smtp_host"`
	SmtpPort int    `yaml:"smtp_port" json:"smtp_port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system" json:"system"`
	Web      WebConfig  `yaml:"web" json:"web"`
	Database DBConfig   `yaml:"database" json:"database"`
	Logger   LogConfig  `yaml:"logger" json:"logger"`
	AI       AIConfig   `yaml:"ai" json:"ai"`
	Mail     MailConfig `yaml:"mail" json:"mail"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "atelier",
			Location: "America/Argentina/Buenos_Aires",
			Workdir:  "/var/atelier",
		},
		Web: WebConfig{
			Host:    "0.0.0.0",
			Port:    1816,
			Secret:  "9b6de5cc-atelier-1816-demo-secret",
			BaseURL: "http://localhost:1816",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "atelier",
			User:     "postgres",
			Passwd:   "",
			MaxConn:  100,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: true,
			Filename:   "/var/atelier/atelier.log",
		},
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// overrides. A missing file yields the default configuration.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if data, err := os.ReadFile(filepath.Clean(cfile)); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}
	setEnvString("ATELIER_WORKDIR", &cfg.System.Workdir)
	setEnvString("ATELIER_WEB_HOST", &cfg.Web.Host)
	setEnvString("ATELIER_WEB_SECRET", &cfg.Web.Secret)
	setEnvString("ATELIER_DB_TYPE", &cfg.Database.Type)
	setEnvString("ATELIER_DB_HOST", &cfg.Database.Host)
	setEnvString("ATELIER_DB_NAME", &cfg.Database.Name)
	setEnvString("ATELIER_DB_USER", &cfg.Database.User)
	setEnvString("ATELIER_DB_PWD", &cfg.Database.Passwd)
	setEnvString("ATELIER_AI_ENDPOINT", &cfg.AI.Endpoint)
	setEnvString("ATELIER_AI_APIKEY", &cfg.AI.Apikey)
	return cfg
}

func setEnvString(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}
