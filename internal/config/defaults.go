package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Workbook == "" {
		cfg.Workbook = "data.xlsx"
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Division of Health AI"
	}
	if cfg.Site.OutputDir == "" {
		cfg.Site.OutputDir = "dist"
	}
	if cfg.Site.DataDir == "" {
		cfg.Site.DataDir = "data"
	}
	if cfg.Site.AssetsDir == "" {
		cfg.Site.AssetsDir = "assets"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Deploy.Region == "" {
		cfg.Deploy.Region = "us-east-1"
	}
}
