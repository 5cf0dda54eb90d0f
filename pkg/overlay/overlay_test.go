package overlay

import (
	"image"
	"testing"

	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/landmark"
	"gocv.io/x/gocv"
)

func TestToPixel(t *testing.T) {
	tests := []struct {
		name string
		p    landmark.Point
		want image.Point
	}{
		{"origin", landmark.Pt(0, 0), image.Pt(0, 0)},
		{"center", landmark.Pt(0.5, 0.5), image.Pt(320, 240)},
		{"far corner", landmark.Pt(1, 1), image.Pt(640, 480)},
		{"rounds", landmark.Pt(0.1234, 0.9876), image.Pt(79, 474)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToPixel(tc.p, 640, 480); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBoxRect(t *testing.T) {
	b := attention.Box{Min: landmark.Pt(0.25, 0.5), Max: landmark.Pt(0.5, 0.75)}
	got := BoxRect(b, 100, 100)
	if got != image.Rect(25, 50, 50, 75) {
		t.Errorf("got %v", got)
	}
}

func TestStatusColor(t *testing.T) {
	if StatusColor(attention.StatusFocused) != green {
		t.Error("FOCUSED should be green")
	}
	if StatusColor(attention.StatusDrowsy) != orange {
		t.Error("DROWSY should be orange")
	}
	for _, s := range []attention.Status{attention.StatusDistracted, attention.StatusEyesClosed, attention.StatusNoFace} {
		if StatusColor(s) != red {
			t.Errorf("%v should be red", s)
		}
	}
}

func TestRenderer_AlertLifecycle(t *testing.T) {
	r := New(0)
	if r.quality != 80 {
		t.Errorf("default quality = %d", r.quality)
	}

	r.OnAlert(attention.AlertIntent{Seq: 1})
	if !r.Alerting() {
		t.Error("should be alerting")
	}
	r.OnAlertClear(attention.AlertIntent{Seq: 1})
	if r.Alerting() {
		t.Error("should have cleared")
	}

	r.OnAlert(attention.AlertIntent{Seq: 2})
	r.OnStop(attention.Summary{})
	if r.Alerting() {
		t.Error("stop should clear the banner")
	}
}

func TestRenderer_Annotate(t *testing.T) {
	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		t.Fatal(err)
	}
	src := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	r := New(75)
	r.OnFrame(attention.Report{
		Classification: attention.Classification{
			FrameResult: attention.FrameResult{Status: attention.StatusFocused, AvgEAR: 0.3},
			Face:        true,
			Left: attention.EyeMetrics{
				Box:        attention.Box{Min: landmark.Pt(0.3, 0.4), Max: landmark.Pt(0.4, 0.43)},
				IrisCenter: landmark.Pt(0.35, 0.415),
				Centered:   true,
			},
		},
	})
	r.OnAlert(attention.AlertIntent{Seq: 1})

	out, err := r.Annotate(src)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := gocv.IMDecode(out, gocv.IMReadColor)
	if err != nil {
		t.Fatal(err)
	}
	defer decoded.Close()
	if decoded.Cols() != 320 || decoded.Rows() != 240 {
		t.Errorf("size = %dx%d, want 320x240", decoded.Cols(), decoded.Rows())
	}
}

func TestRenderer_AnnotateRejectsGarbage(t *testing.T) {
	r := New(80)
	if _, err := r.Annotate([]byte("not a jpeg")); err == nil {
		t.Error("expected error for invalid image")
	}
}
