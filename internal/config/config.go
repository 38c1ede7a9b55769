package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Local & deployment secrets (fill up for local development)
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`
	GroqAPIKey         string `envconfig:"GROQ_API_KEY" required:"true"`
	RazorpayKeyID      string `envconfig:"RAZORPAY_KEY_ID" required:"true"`
	RazorpayKeySecret  string `envconfig:"RAZORPAY_KEY_SECRET" required:"true"`

	Port        string `envconfig:"PORT" default:"5000"`
	Environment string `envconfig:"ENV" default:"development"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	GroqModel   string `envconfig:"GROQ_MODEL" default:"openai/gpt-oss-120b"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
