package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
portal:
  document_dir: "/var/kiroku/docs"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Portal.DocumentDir != "/var/kiroku/docs" {
		t.Errorf("document_dir = %s", cfg.Portal.DocumentDir)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
portal:
  document_dir: "./documents"
intake:
  drop_dir: "./drop"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDocs := filepath.Join(dir, "documents")
	if cfg.Portal.DocumentDir != wantDocs {
		t.Errorf("document_dir = %s, want %s", cfg.Portal.DocumentDir, wantDocs)
	}
	wantDrop := filepath.Join(dir, "drop")
	if cfg.Intake.DropDir != wantDrop {
		t.Errorf("drop_dir = %s, want %s", cfg.Intake.DropDir, wantDrop)
	}
}

func TestLoad_intakeDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Intake.DropDir != "" {
		t.Errorf("drop_dir should stay empty when unset, got %s", cfg.Intake.DropDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Portal.Departments) != 6 || cfg.Portal.Departments[0] != "engineering" {
		t.Errorf("default departments: got %v", cfg.Portal.Departments)
	}
	if cfg.Portal.DocumentDir == "" {
		t.Error("document_dir should be set by default")
	}
	if got := cfg.Portal.Relevance["safety-compliance"]; len(got) != 1 || got[0] != "safety" {
		t.Errorf("default relevance mapping: got %v", cfg.Portal.Relevance)
	}
	if len(cfg.Intake.Extensions) != 5 || cfg.Intake.Extensions[0] != ".pdf" {
		t.Errorf("intake extensions: got %v", cfg.Intake.Extensions)
	}
	if cfg.Intake.DefaultDepartment != "operations" {
		t.Errorf("default department: got %s", cfg.Intake.DefaultDepartment)
	}
	if cfg.Intake.MaxConcurrentJobs != 4 {
		t.Errorf("max concurrent jobs: got %d", cfg.Intake.MaxConcurrentJobs)
	}
	if cfg.Intake.DebounceMS != 400 {
		t.Errorf("debounce: got %d", cfg.Intake.DebounceMS)
	}
	if cfg.Notify.TimeoutSeconds != 5 {
		t.Errorf("notify timeout: got %d", cfg.Notify.TimeoutSeconds)
	}
}

func TestApplyDefaults_keepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Portal: PortalConfig{Departments: []string{"legal"}},
		Intake: IntakeConfig{DefaultDepartment: "legal", MaxConcurrentJobs: 2},
	}
	ApplyDefaults(cfg)
	if len(cfg.Portal.Departments) != 1 || cfg.Portal.Departments[0] != "legal" {
		t.Errorf("departments overwritten: %v", cfg.Portal.Departments)
	}
	if cfg.Intake.DefaultDepartment != "legal" || cfg.Intake.MaxConcurrentJobs != 2 {
		t.Errorf("intake overwritten: %+v", cfg.Intake)
	}
}

func TestPortalConfig_HasDepartment(t *testing.T) {
	p := &PortalConfig{Departments: []string{"safety", "hr"}}
	if !p.HasDepartment("safety") {
		t.Error("HasDepartment(safety) = false")
	}
	if p.HasDepartment("marketing") {
		t.Error("HasDepartment(marketing) = true")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server: ServerConfig{Host: "localhost", Port: 9090},
		Portal: PortalConfig{DocumentDir: "/tmp/docs"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
