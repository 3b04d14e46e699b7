package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	input := []byte("value: ${TEST_VAR}")
	expected := []byte("value: test_value")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsMultiple(t *testing.T) {
	os.Setenv("VAR1", "value1")
	os.Setenv("VAR2", "value2")
	defer os.Unsetenv("VAR1")
	defer os.Unsetenv("VAR2")

	input := []byte("first: ${VAR1}\nsecond: ${VAR2}")
	expected := []byte("first: value1\nsecond: value2")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsNotSet(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR")

	input := []byte("value: ${NONEXISTENT_VAR}")
	expected := []byte("value: ${NONEXISTENT_VAR}") // unchanged

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsNoVars(t *testing.T) {
	input := []byte("value: plain_text")
	expected := []byte("value: plain_text")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	os.Setenv("TEST_DATA_DIR", "/tmp/phasepower-test")
	os.Setenv("TEST_TRACE_DIR", "/data/powmon")
	defer os.Unsetenv("TEST_DATA_DIR")
	defer os.Unsetenv("TEST_TRACE_DIR")

	content := `
dataset:
  trace_dir: "${TEST_TRACE_DIR}"

persistence:
  data_dir: "${TEST_DATA_DIR}"

logging:
  level: "info"
  format: "json"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Persistence.DataDir != "/tmp/phasepower-test" {
		t.Errorf("expected data dir /tmp/phasepower-test, got %s", cfg.Persistence.DataDir)
	}

	if cfg.Dataset.TraceDir != "/data/powmon" {
		t.Errorf("expected trace dir /data/powmon, got %s", cfg.Dataset.TraceDir)
	}
}

func TestSubstituteEnvVarsFallback(t *testing.T) {
	os.Unsetenv("PHASEPOWER_UNSET")
	os.Setenv("PHASEPOWER_SET", "present")
	defer os.Unsetenv("PHASEPOWER_SET")

	input := []byte("a: ${PHASEPOWER_UNSET:-fallback}\nb: ${PHASEPOWER_SET:-ignored}\nc: ${PHASEPOWER_UNSET:-}")
	expected := []byte("a: fallback\nb: present\nc: ")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}
