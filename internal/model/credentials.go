package model

import (
	"errors"
	"strings"
)

type Credentials struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"-" yaml:"password"`
}

func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "EMAIL")
	}
	if strings.TrimSpace(c.Password) == "" {
		missing = append(missing, "PASSWD")
	}
	if len(missing) > 0 {
		return errors.New("missing credentials: " + strings.Join(missing, ", "))
	}
	return nil
}
