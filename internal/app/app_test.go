package app

import "testing"

func TestFullVersion(t *testing.T) {
	originalVersion, originalCommit := Version, Commit
	t.Cleanup(func() {
		Version, Commit = originalVersion, originalCommit
	})

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{name: "release", version: "1.2.0", want: "conformance-wizard version 1.2.0"},
		{name: "with commit", version: "1.2.0", commit: "abc1234", want: "conformance-wizard version 1.2.0 (abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = tt.version, tt.commit

			if got := FullVersion(); got != tt.want {
				t.Errorf("Expected full version %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	expected := "conformance-wizard/" + Version
	if UserAgent() != expected {
		t.Errorf("Expected user agent %q, got %q", expected, UserAgent())
	}
}

func TestAppConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	if DefaultServerURL == "" {
		t.Error("DefaultServerURL constant should not be empty")
	}
}
