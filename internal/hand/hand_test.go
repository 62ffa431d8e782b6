package hand

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
)

func TestMirrorPolicy_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		policy MirrorPolicy
		raw    string
		want   Label
		wantOK bool
	}{
		{name: "mirrored right becomes left", policy: Mirrored, raw: "Right", want: Left, wantOK: true},
		{name: "mirrored left becomes right", policy: Mirrored, raw: "Left", want: Right, wantOK: true},
		{name: "unmirrored right stays right", policy: Unmirrored, raw: "Right", want: Right, wantOK: true},
		{name: "unmirrored left stays left", policy: Unmirrored, raw: "Left", want: Left, wantOK: true},
		{name: "case insensitive", policy: Mirrored, raw: "right", want: Left, wantOK: true},
		{name: "unknown label", policy: Mirrored, raw: "Both", wantOK: false},
		{name: "empty label", policy: Unmirrored, raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policy.Resolve(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMirrorPolicy_String(t *testing.T) {
	if Mirrored.String() != "mirrored" {
		t.Errorf("Mirrored.String() = %q", Mirrored.String())
	}
	if Unmirrored.String() != "unmirrored" {
		t.Errorf("Unmirrored.String() = %q", Unmirrored.String())
	}
}

func TestRegion_Fields(t *testing.T) {
	r := Region{Label: Left, Anchor: r3.Vector{X: 0.1, Y: 0.2, Z: 0.9}}
	for i := range r.Landmarks {
		r.Landmarks[i] = r3.Vector{X: float64(i), Y: 0, Z: 1}
	}
	r.Landmarks[Wrist] = r.Anchor

	t.Run("selects requested fields only", func(t *testing.T) {
		got, err := r.Fields([]string{FieldLabel, FieldAnchor})
		if err != nil {
			t.Fatalf("Fields() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 fields, got %d", len(got))
		}
		if got[FieldLabel] != "left" {
			t.Errorf("label = %v, want left", got[FieldLabel])
		}
		if got[FieldAnchor] != [3]float64{0.1, 0.2, 0.9} {
			t.Errorf("anchor = %v", got[FieldAnchor])
		}
	})

	t.Run("landmarks rendered as 21 triples", func(t *testing.T) {
		got, err := r.Fields([]string{FieldLandmarks})
		if err != nil {
			t.Fatalf("Fields() error = %v", err)
		}
		pts, ok := got[FieldLandmarks].([][3]float64)
		if !ok {
			t.Fatalf("landmarks has type %T", got[FieldLandmarks])
		}
		if len(pts) != NumLandmarks {
			t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(pts))
		}
		if pts[IndexTip] != [3]float64{8, 0, 1} {
			t.Errorf("index tip = %v", pts[IndexTip])
		}
	})

	t.Run("bridge aliases keep requested key", func(t *testing.T) {
		got, err := r.Fields([]string{"xyz", "rotated_world_landmarks"})
		if err != nil {
			t.Fatalf("Fields() error = %v", err)
		}
		if _, ok := got["xyz"]; !ok {
			t.Error("expected xyz key")
		}
		if _, ok := got["rotated_world_landmarks"]; !ok {
			t.Error("expected rotated_world_landmarks key")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := r.Fields([]string{"lm_score"})
		if !errors.Is(err, ErrUnknownField) {
			t.Errorf("expected ErrUnknownField, got %v", err)
		}
	})
}
