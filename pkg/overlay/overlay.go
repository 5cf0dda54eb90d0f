// Package overlay draws attention state onto camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/landmark"
	"gocv.io/x/gocv"
)

var (
	green  = color.RGBA{0, 255, 0, 0}
	red    = color.RGBA{255, 0, 0, 0}
	orange = color.RGBA{255, 165, 0, 0}
	yellow = color.RGBA{255, 255, 0, 0}
	white  = color.RGBA{255, 255, 255, 0}
)

// StatusColor returns the label color for a status.
func StatusColor(s attention.Status) color.RGBA {
	switch s {
	case attention.StatusFocused:
		return green
	case attention.StatusDrowsy:
		return orange
	default:
		return red
	}
}

// ToPixel maps a normalized point onto a w x h image.
func ToPixel(p landmark.Point, w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)+0.5), int(p.Y*float64(h)+0.5))
}

// BoxRect maps a normalized box onto a w x h image.
func BoxRect(b attention.Box, w, h int) image.Rectangle {
	return image.Rectangle{Min: ToPixel(b.Min, w, h), Max: ToPixel(b.Max, w, h)}.Canon()
}

// Renderer keeps the latest monitor output and annotates frames with it.
// It implements monitor.Sink.
type Renderer struct {
	quality int

	mu       sync.Mutex
	report   *attention.Report
	snap     attention.Snapshot
	alerting bool
}

// New creates a renderer encoding JPEGs at quality (1-100).
func New(quality int) *Renderer {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Renderer{quality: quality}
}

func (r *Renderer) OnStart(snap attention.Snapshot) {
	r.mu.Lock()
	r.snap = snap
	r.report = nil
	r.alerting = false
	r.mu.Unlock()
}

func (r *Renderer) OnFrame(rep attention.Report) {
	r.mu.Lock()
	r.report = &rep
	r.mu.Unlock()
}

func (r *Renderer) OnAlert(attention.AlertIntent) {
	r.mu.Lock()
	r.alerting = true
	r.mu.Unlock()
}

func (r *Renderer) OnAlertClear(attention.AlertIntent) {
	r.mu.Lock()
	r.alerting = false
	r.mu.Unlock()
}

func (r *Renderer) OnTick(snap attention.Snapshot) {
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
}

// OnStop clears everything drawn.
func (r *Renderer) OnStop(attention.Summary) {
	r.mu.Lock()
	r.report = nil
	r.snap = attention.Snapshot{}
	r.alerting = false
	r.mu.Unlock()
}

// Alerting reports whether the drowsy banner is showing.
func (r *Renderer) Alerting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerting
}

// Annotate decodes a JPEG, draws the latest state and re-encodes it.
func (r *Renderer) Annotate(jpeg []byte) ([]byte, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	r.Draw(&img)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, r.quality})
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Draw annotates img in place.
func (r *Renderer) Draw(img *gocv.Mat) {
	r.mu.Lock()
	rep := r.report
	snap := r.snap
	alerting := r.alerting
	r.mu.Unlock()

	w, h := img.Cols(), img.Rows()

	if rep != nil && rep.Face {
		for _, eye := range []attention.EyeMetrics{rep.Left, rep.Right} {
			boxColor := green
			if !eye.Centered {
				boxColor = yellow
			}
			gocv.Rectangle(img, BoxRect(eye.Box, w, h), boxColor, 1)
			gocv.Circle(img, ToPixel(eye.IrisCenter, w, h), 2, red, -1)
		}
	}

	if rep != nil {
		gocv.PutText(img, "Status: "+rep.Status.String(), image.Pt(20, 40),
			gocv.FontHersheySimplex, 0.9, StatusColor(rep.Status), 2)
	}

	lines := []string{
		fmt.Sprintf("Session: %ds", snap.ElapsedSeconds),
		fmt.Sprintf("Distractions: %d", snap.DistractionCount),
		fmt.Sprintf("Drowsy alerts: %d", snap.DrowsyAlertCount),
	}
	if rep != nil {
		lines = append(lines, fmt.Sprintf("EAR: %.2f", rep.AvgEAR))
	}
	for i, line := range lines {
		gocv.PutText(img, line, image.Pt(20, 75+i*25),
			gocv.FontHersheySimplex, 0.55, white, 1)
	}

	if alerting {
		gocv.Rectangle(img, image.Rect(0, 0, w, h), red, 12)
		gocv.PutText(img, "DROWSINESS DETECTED", image.Pt(w/2-170, h-40),
			gocv.FontHersheySimplex, 1.0, red, 3)
	}
}
