package config

import "testing"

func TestEnvCredentialStore(t *testing.T) {
	t.Setenv("TEST_DICTATION_KEY", "sk-value")

	store := NewEnvCredentialStore(map[string]string{
		"cloud_batch": "TEST_DICTATION_KEY",
		"unset":       "TEST_DICTATION_MISSING",
	})

	if v, ok := store.Get("cloud_batch"); !ok || v != "sk-value" {
		t.Errorf("Get(cloud_batch) = %q, %v; want sk-value, true", v, ok)
	}
	if _, ok := store.Get("unset"); ok {
		t.Error("expected absent for an unset variable")
	}
	if _, ok := store.Get("unmapped"); ok {
		t.Error("expected absent for an unmapped tag")
	}
}

func TestStaticCredentialStore(t *testing.T) {
	store := StaticCredentialStore{"cloud_streaming": "secret", "empty": ""}

	if v, ok := store.Get("cloud_streaming"); !ok || v != "secret" {
		t.Errorf("Get(cloud_streaming) = %q, %v; want secret, true", v, ok)
	}
	if _, ok := store.Get("empty"); ok {
		t.Error("expected an empty secret to read as absent")
	}
}
