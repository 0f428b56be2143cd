package auth

import (
	"encoding/json"
	"os"

	log "github.com/sirupsen/logrus"
)

type userConfig struct {
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"credentials"`
}

// LoadUserConfig reads credentials from a local JSON config file.
// A missing file or missing fields is not fatal, callers fall back to prompting.
func LoadUserConfig(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("config file not found: %s", path)
			return "", "", nil
		}
		log.Errorf("read user config Failed {%s}", err.Error())
		return "", "", err
	}

	var config userConfig
	if err = json.Unmarshal(data, &config); err != nil {
		log.Errorf("parse user config Failed {%s}", err.Error())
		return "", "", err
	}

	email := config.Credentials.Email
	password := config.Credentials.Password
	if email == "" || password == "" {
		log.Warn("credentials not found in config file")
		return "", "", nil
	}
	log.Infof("loaded credentials for: %s", email)
	return email, password, nil
}
