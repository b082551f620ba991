package config

// DefaultDepartments is the portal's standard department set.
var DefaultDepartments = []string{
	"engineering",
	"procurement",
	"hr",
	"safety",
	"operations",
	"finance",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Portal.Departments) == 0 {
		cfg.Portal.Departments = append([]string(nil), DefaultDepartments...)
	}
	if cfg.Portal.DocumentDir == "" {
		cfg.Portal.DocumentDir = "/usr/local/var/kiroku/documents"
	}
	if cfg.Portal.Relevance == nil {
		cfg.Portal.Relevance = map[string][]string{
			"safety-compliance":        {"safety"},
			"technical-specifications": {"engineering"},
		}
	}
	if cfg.Intake.Extensions == nil {
		cfg.Intake.Extensions = []string{".pdf", ".docx", ".xlsx", ".txt", ".md"}
	}
	if cfg.Intake.DefaultDepartment == "" {
		cfg.Intake.DefaultDepartment = "operations"
	}
	if cfg.Intake.MaxConcurrentJobs == 0 {
		cfg.Intake.MaxConcurrentJobs = 4
	}
	if cfg.Intake.DebounceMS == 0 {
		cfg.Intake.DebounceMS = 400
	}
	if cfg.Notify.TimeoutSeconds == 0 {
		cfg.Notify.TimeoutSeconds = 5
	}
}
