package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Remote   Remote   `koanf:"remote"`
	Page     Page     `koanf:"page"`
}

type Server struct {
	Port int `koanf:"port"`
	// ReadTimeout and WriteTimeout are expressed in seconds.
	ReadTimeout  int `koanf:"readtimeout"`
	WriteTimeout int `koanf:"writetimeout"`
}

type Storage struct {
	Driver        string `koanf:"driver"`
	Path          string `koanf:"path"`
	Prefix        string `koanf:"prefix"`
	RetentionDays int    `koanf:"retentiondays"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Remote struct {
	Enabled bool   `koanf:"enabled"`
	Project string `koanf:"project"`
}

type Page struct {
	Default string `koanf:"default"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Port:         8181,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: Storage{
			Driver:        DriverSQLite,
			Path:          "./data/moveplan.db",
			Prefix:        "moveplan-app-",
			RetentionDays: 30,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "moveplan",
			Pass:   "",
			Name:   "moveplan",
			Schema: "moveplan",
		},
		Page: Page{
			Default: "Home",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "MOVEPLAN_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "MOVEPLAN_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
