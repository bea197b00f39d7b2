package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAILTRACE_DICT_DIR", "")
	t.Setenv("MAILTRACE_DSN", "")
	t.Setenv("MAILTRACE_CLASSIFIER_TOKEN", "")
	t.Setenv("HF_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DictDir != "dictionaries" {
		t.Errorf("DictDir = %q, want dictionaries", cfg.DictDir)
	}
	if cfg.DSN != "" {
		t.Errorf("DSN = %q, want empty", cfg.DSN)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MAILTRACE_DICT_DIR", "/data/dicts")
	t.Setenv("MAILTRACE_DSN", "postgres://localhost/mailtrace")
	t.Setenv("MAILTRACE_CLASSIFIER_TOKEN", "")
	t.Setenv("HF_TOKEN", "hf-fallback")
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DictDir != "/data/dicts" {
		t.Errorf("DictDir = %q", cfg.DictDir)
	}
	if cfg.DSN != "postgres://localhost/mailtrace" {
		t.Errorf("DSN = %q", cfg.DSN)
	}
	if cfg.ClassifierToken != "hf-fallback" {
		t.Errorf("ClassifierToken = %q, want hf-fallback", cfg.ClassifierToken)
	}
}
