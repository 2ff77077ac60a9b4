package mqtt

import "testing"

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device event", Topics{Prefix: "devreg"}.DeviceEvent("dev-1", "created"), "devreg/devices/dev-1/created"},
		{"custom prefix", Topics{Prefix: "site/a"}.DeviceEvent("dev-1", "deleted"), "site/a/devices/dev-1/deleted"},
		{"trailing slash trimmed", Topics{Prefix: "devreg/"}.SystemStatus(), "devreg/system/status"},
		{"default prefix", Topics{}.SystemStatus(), "devreg/system/status"},
		{"slash in id", Topics{}.DeviceEvent("rack/1", "created"), "devreg/devices/rack_1/created"},
		{"wildcards in id", Topics{}.DeviceEvent("a+b#", "created"), "devreg/devices/a_b_/created"},
		{"empty id", Topics{}.DeviceEvent("", "created"), "devreg/devices/_/created"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
