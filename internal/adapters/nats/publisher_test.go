package natsadapter

import (
	"testing"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

func TestComputedSubject(t *testing.T) {
	tests := []struct {
		mode domain.TrajectoryMode
		want string
	}{
		{domain.ModeLowAngle, "fans.computed.LA"},
		{domain.ModeHighAngle, "fans.computed.HA"},
		{"", "fans.computed.any"},
	}
	for _, tt := range tests {
		if got := ComputedSubject(tt.mode); got != tt.want {
			t.Errorf("ComputedSubject(%q) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
