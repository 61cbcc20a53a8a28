package logging

import "testing"

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "console", false},
		{"DEBUG", "json", false},
		{"", "", false},
		{"loud", "console", true},
		{"info", "xml", true},
	} {
		logger, err := New(tc.level, tc.format)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("New(%q, %q): expected error", tc.level, tc.format)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q, %q) failed: %v", tc.level, tc.format, err)
		}
		_ = logger.Sync()
	}
}
