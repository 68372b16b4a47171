package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// Runtime holds the infrastructure settings read from the environment.
// Engine behavior lives in the YAML Config; this covers only the services
// the process connects to.
type Runtime struct {
	Database struct {
		DSN string `env:"DSN"`
	} `envPrefix:"DATABASE_"`
	SMTP struct {
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"465"`
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD"`
		From     string `env:"FROM"`
	} `envPrefix:"SMTP_"`
}

// SMTPConfigured reports whether enough SMTP settings are present to send mail
func (r *Runtime) SMTPConfigured() bool {
	return r.SMTP.Host != "" && r.SMTP.From != ""
}

// LoadRuntime parses the runtime configuration from SHIFTBALANCE_-prefixed
// environment variables
func LoadRuntime() (*Runtime, error) {
	rt := &Runtime{}
	if err := env.ParseWithOptions(rt, env.Options{Prefix: "SHIFTBALANCE_"}); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return rt, nil
}
