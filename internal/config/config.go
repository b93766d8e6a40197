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

type Application struct {
	Listen   string   `koanf:"listen"`
	Auth     Auth     `koanf:"auth"`
	Media    Media    `koanf:"media"`
	Database Database `koanf:"db"`
}

type Auth struct {
	// Secret signs the HS256 session tokens. Must be set in production.
	Secret       string `koanf:"secret"`
	TokenTTLMins int    `koanf:"tokenttlmins"`
}

type Media struct {
	// UploadURL is the base endpoint of the image host, e.g.
	// https://api.cloudinary.com/v1_1/<cloud>. Empty disables proof uploads.
	UploadURL string `koanf:"uploadurl"`
	Preset    string `koanf:"preset"`
	APIKey    string `koanf:"apikey"`
	APISecret string `koanf:"apisecret"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8282",
		Auth: Auth{
			TokenTTLMins: 60 * 24,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "uangsakti",
			Pass:   "",
			Name:   "uangsakti",
			Schema: "uangsakti",
		},
	}, "koanf"), nil)
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
		Prefix: "UANGSAKTI_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "UANGSAKTI_")), "_", ".")
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
