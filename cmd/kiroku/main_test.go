package main

import "testing"

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single arg", []string{"budget"}, "budget"},
		{"multiple args joined", []string{"evacuation", "procedure"}, "evacuation procedure"},
		{"pre-quoted arg", []string{"evacuation procedure"}, "evacuation procedure"},
		{"empty", nil, ""},
		{"whitespace trimmed", []string{" budget "}, "budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildSearchQuery(tt.args); got != tt.want {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
