package http

import "testing"

func TestSubjectFor(t *testing.T) {
	tests := []struct {
		channel, mode string
		want          string
		ok            bool
	}{
		{"", "", "fans.computed.>", true},
		{"computed", "", "fans.computed.>", true},
		{"computed", "ha", "fans.computed.HA", true},
		{"computed", "LA", "fans.computed.LA", true},
		{"archived", "", "fans.archived.>", true},
		{"archived", "HA", "fans.archived.>", true},
		{"vehicles", "", "", false},
	}
	for _, tt := range tests {
		got, ok := subjectFor(tt.channel, tt.mode)
		if got != tt.want || ok != tt.ok {
			t.Errorf("subjectFor(%q, %q) = (%q, %v), want (%q, %v)", tt.channel, tt.mode, got, ok, tt.want, tt.ok)
		}
	}
}

func TestETagMatches(t *testing.T) {
	etag := `W/"abc123"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`W/"abc123"`, true},
		{`"abc123"`, true},
		{`"zzz", W/"abc123"`, true},
		{"*", true},
		{`"other"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, etag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestCacheControlFor(t *testing.T) {
	tests := map[string]string{
		"/v1/health":         "public, max-age=10",
		"/metrics":           "no-cache",
		"/v1/fans":           "no-cache",
		"/v1/fans/abc":       "public, max-age=600",
		"/v1/fans/abc/kml":   "public, max-age=600",
		"/v1/weather":        "public, max-age=300",
		"/docs/openapi.yaml": "public, max-age=3600",
		"/somewhere/else":    "",
	}
	for path, want := range tests {
		if got := cacheControlFor(path); got != want {
			t.Errorf("cacheControlFor(%q) = %q, want %q", path, got, want)
		}
	}
}
