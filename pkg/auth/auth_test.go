package auth

import (
	"context"
	"testing"
)

func TestNewCookieJar(t *testing.T) {
	jar, err := NewCookieJar(map[string]string{
		"sessionid": "abc123",
		"csrftoken": "xyz789",
		"empty":     "",
	})
	if err != nil {
		t.Fatalf("NewCookieJar failed: %v", err)
	}
	if jar == nil {
		t.Fatal("jar should not be nil")
	}
}

func TestEnvSource(t *testing.T) {
	t.Setenv("INSTAGRAM_SESSIONID", "test-session")
	t.Setenv("INSTAGRAM_CSRFTOKEN", "test-csrf")

	cookies, err := EnvSource{}.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if cookies["sessionid"] != "test-session" {
		t.Errorf("sessionid = %q, want %q", cookies["sessionid"], "test-session")
	}
	if cookies["csrftoken"] != "test-csrf" {
		t.Errorf("csrftoken = %q, want %q", cookies["csrftoken"], "test-csrf")
	}
}

func TestEnvSourceNoCookies(t *testing.T) {
	t.Setenv("INSTAGRAM_SESSIONID", "")
	t.Setenv("INSTAGRAM_CSRFTOKEN", "")

	cookies, err := EnvSource{}.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if cookies != nil {
		t.Error("cookies should be nil when env vars not set")
	}
}

type staticSource map[string]string

func (s staticSource) Cookies(context.Context) (map[string]string, error) {
	return s, nil
}

func TestChain(t *testing.T) {
	first := staticSource(nil)
	second := staticSource{"sessionid": "from-second"}
	third := staticSource{"sessionid": "from-third"}

	cookies, err := Chain(context.Background(), first, second, third)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	if cookies["sessionid"] != "from-second" {
		t.Errorf("sessionid = %q, want %q", cookies["sessionid"], "from-second")
	}
}

func TestChainAllEmpty(t *testing.T) {
	cookies, err := Chain(context.Background(), staticSource(nil), staticSource(nil))
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	if cookies != nil {
		t.Error("cookies should be nil when all sources empty")
	}
}
