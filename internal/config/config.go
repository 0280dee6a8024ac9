package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	HTTP    HTTPConfig    `yaml:"http"`
	Upload  UploadConfig  `yaml:"upload"`
	Inquiry InquiryConfig `yaml:"inquiry"`
}

// APIConfig — внешний REST API проектов, с которым работает дашборд.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

// UploadConfig — параметры нормализации изображений перед загрузкой.
type UploadConfig struct {
	MaxDimension int `yaml:"max_dimension" env-default:"1920"`
	JPEGQuality  int `yaml:"jpeg_quality" env-default:"85"`
}

type InquiryConfig struct {
	WhatsAppNumber string `yaml:"whatsapp_number"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
