package app

import (
	"testing"

	"github.com/inkgrade/core/internal/config"
)

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"https://grader.example.com", "app.example.org", "*.example.net"}

	cases := []struct {
		origin string
		want   bool
	}{
		{"https://grader.example.com", true},
		{"http://grader.example.com", true}, // host match
		{"https://app.example.org", true},
		{"https://example.net", true},
		{"https://tool.example.net", true},
		{"https://deep.tool.example.net", true},
		{"https://evilexample.net", false},
		{"https://example.com", false},
		{"https://other.example.org", false},
	}
	for _, tc := range cases {
		if got := originAllowed(patterns, tc.origin); got != tc.want {
			t.Fatalf("originAllowed(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}

func TestCorsPolicyModes(t *testing.T) {
	dev := &config.AppConfig{Env: "development", AllowedOrigins: []string{"app.example.org"}}
	if !corsPolicy(dev).AllowOriginFunc("https://anywhere.test") {
		t.Fatalf("development must admit every origin")
	}

	open := &config.AppConfig{Env: "production"}
	if !corsPolicy(open).AllowOriginFunc("https://anywhere.test") {
		t.Fatalf("empty allowlist must admit every origin")
	}

	locked := &config.AppConfig{Env: "production", AllowedOrigins: []string{"app.example.org"}}
	policy := corsPolicy(locked)
	if !policy.AllowOriginFunc("https://app.example.org") {
		t.Fatalf("listed origin rejected")
	}
	if policy.AllowOriginFunc("https://anywhere.test") {
		t.Fatalf("unlisted origin admitted")
	}
}
