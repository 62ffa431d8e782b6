package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/handfuse/internal/capture"
	"github.com/ayusman/handfuse/internal/detector"
	"github.com/ayusman/handfuse/internal/export"
	"github.com/ayusman/handfuse/internal/hand"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(capture.DeviceConfig{Width: 640, Height: 480, FPS: 30}, cfg.Device()); diff != "" {
		t.Errorf("device config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(detector.DefaultConfig(), cfg.Detector()); diff != "" {
		t.Errorf("detector config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(export.DefaultSelection(), cfg.Selection()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	if cfg.Mirror() != hand.Mirrored {
		t.Errorf("expected mirrored by default, got %v", cfg.Mirror())
	}
	if cfg.UDPAddr != "" || cfg.DBPath != "" {
		t.Errorf("UDP bridge and recording should be off by default: %+v", cfg)
	}
	if cfg.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("unexpected HTTP address %q", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HANDFUSE_SERIAL", "947122071234")
	t.Setenv("HANDFUSE_MIRRORED", "false")
	t.Setenv("HANDFUSE_MAX_HANDS", "1")
	t.Setenv("HANDFUSE_UDP_ADDR", "127.0.0.1:5052")
	t.Setenv("HANDFUSE_HAND_FIELDS", "label,xyz,rotated_world_landmarks")
	t.Setenv("HANDFUSE_STATUS_NAME", "res2")
	t.Setenv("HANDFUSE_STATUS_FIELDS", "result,arr1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device().Serial != "947122071234" {
		t.Errorf("unexpected serial %q", cfg.Device().Serial)
	}
	if cfg.Mirror() != hand.Unmirrored {
		t.Errorf("expected unmirrored, got %v", cfg.Mirror())
	}
	if cfg.Detector().MaxHands != 1 {
		t.Errorf("expected 1 hand, got %d", cfg.Detector().MaxHands)
	}
	want := export.Selection{
		HandFields:   []string{"label", "xyz", "rotated_world_landmarks"},
		StatusName:   "res2",
		StatusFields: []string{"result", "arr1"},
	}
	if diff := cmp.Diff(want, cfg.Selection()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
		wantErr error
	}{
		{name: "not a number", key: "HANDFUSE_FPS", value: "fast", wantMsg: "parse env:"},
		{name: "zero fps", key: "HANDFUSE_FPS", value: "0", wantMsg: "fps 0"},
		{name: "too many hands", key: "HANDFUSE_MAX_HANDS", value: "3", wantMsg: "max hands 3"},
		{name: "confidence out of range", key: "HANDFUSE_MIN_TRACKING_CONFIDENCE", value: "1.5", wantMsg: "min tracking confidence"},
		{name: "negative index", key: "HANDFUSE_DEVICE_INDEX", value: "-1", wantMsg: "device index"},
		{name: "unknown hand field", key: "HANDFUSE_HAND_FIELDS", value: "label,pose", wantErr: hand.ErrUnknownField},
		{name: "unknown status field", key: "HANDFUSE_STATUS_FIELDS", value: "fps", wantErr: export.ErrUnknownStatusField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in error, got %v", tt.wantMsg, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.FPS = 0
	cfg.MaxHands = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, msg := range []string{"fps 0", "max hands 0"} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("expected %q in %v", msg, err)
		}
	}
}

func TestLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := Config{LogDebug: debug}.Logger()
		if err != nil {
			t.Fatalf("Logger(debug=%v) error = %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("Logger(debug=%v) returned nil", debug)
		}
	}
}
