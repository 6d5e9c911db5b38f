package createbooking

import "time"

type Config struct {
	Timeout            time.Duration
	DefaultServiceType string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            30 * time.Second,
		DefaultServiceType: "Consultation",
	}
}
