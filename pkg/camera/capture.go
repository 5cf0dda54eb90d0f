package camera

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-vigil/internal/log"
	"gocv.io/x/gocv"
)

// ErrDisabled is returned by Open when no device is configured.
var ErrDisabled = errors.New("camera: capture disabled")

// Source reads frames from a webcam and hands them out as JPEG.
type Source struct {
	cfg Config
	cap *gocv.VideoCapture
}

// Open starts capturing from cfg.Device.
func Open(cfg Config) (*Source, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: invalid config: %v", errs)
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", cfg.Device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Source{cfg: cfg, cap: vc}, nil
}

// Run reads frames at the configured rate and calls fn with each encoded
// JPEG until ctx is cancelled. fn runs on the capture goroutine.
func (s *Source) Run(ctx context.Context, fn func(jpeg []byte)) error {
	img := gocv.NewMat()
	defer img.Close()

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.Framerate))
	defer ticker.Stop()

	misses := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if ok := s.cap.Read(&img); !ok || img.Empty() {
			misses++
			if misses%(s.cfg.Framerate*5) == 1 {
				log.Warn("camera read failed", "device", s.cfg.Device, "misses", misses)
			}
			continue
		}
		misses = 0

		buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, s.cfg.Quality})
		if err != nil {
			log.Debug("camera encode failed", "error", err)
			continue
		}
		out := make([]byte, buf.Len())
		copy(out, buf.GetBytes())
		buf.Close()

		fn(out)
	}
}

// Close releases the device.
func (s *Source) Close() error {
	return s.cap.Close()
}
