// Package util loads the client configuration file.
package util

import (
	"encoding/json"
	"os"

	"github.com/mayurg/scribblearena/internal/logger"
)

// Config is the client configuration, loadable from a JSON file.
type Config struct {
	HTTPBaseURL string           `json:"http_base_url"`
	WSURL       string           `json:"ws_url"`
	Log         logger.LogConfig `json:"log"`
}

func DefaultConfig() Config {
	return Config{
		HTTPBaseURL: "http://localhost:8080",
		WSURL:       "ws://localhost:8080/ws/draw",
		Log:         logger.DefaultLogConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file. A missing file is
// not an error; defaults are returned.
func LoadConfig(filePath string) (Config, error) {
	config := DefaultConfig()
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return config, err
	}
	return config, nil
}
