package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"plain transfer", ErrTransfer, KindTransfer},
		{"wrapped format", fmt.Errorf("%w: short read", ErrFormat), KindFormat},
		{"timeout", fmt.Errorf("usb: %w", ErrTimeout), KindTimeout},
		{"mismatch", fmt.Errorf("%w: TEC", ErrProtocolMismatch), KindProtocolMismatch},
		{"unusable wraps cause", fmt.Errorf("%w: %w", ErrFeatureUnusable, ErrTransfer), KindFeatureUnusable},
		{"not open", ErrNotOpen, KindNotOpen},
		{"no device", ErrNoSuchDevice, KindNoSuchDevice},
		{"no feature", ErrNoSuchFeature, KindNoSuchFeature},
		{"illegal", fmt.Errorf("%w: baud 0", ErrIllegalArgument), KindIllegalArgument},
		{"foreign", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindTimeout.String() != "TIMEOUT" {
		t.Errorf("KindTimeout.String() = %q", KindTimeout.String())
	}
	if Kind(200).String() != "UNKNOWN" {
		t.Errorf("out of range kind = %q", Kind(200).String())
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(fmt.Errorf("read: %w", ErrTimeout)) {
		t.Error("wrapped timeout not detected")
	}
	if IsTimeout(ErrTransfer) {
		t.Error("transfer error reported as timeout")
	}
}
