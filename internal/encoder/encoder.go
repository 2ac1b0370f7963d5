// Package encoder resolves the video encoder profile for a run.
//
// Detection runs once at engine construction; the resulting Profile is
// immutable and can be injected directly in tests so nothing depends on host
// hardware.
package encoder

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"vidstitch/internal/logging"
)

const detectTimeout = 5 * time.Second

// Profile describes the active video encoder for a run.
type Profile struct {
	Codec       string
	HWAccelArgs []string
	QualityArgs []string
	Preset      string
	Hardware    bool
}

// Label returns a short human-readable description.
func (p Profile) Label() string {
	kind := "CPU"
	if p.Hardware {
		kind = "GPU"
	}
	return fmt.Sprintf("%s (%s)", p.Codec, kind)
}

// Software returns the libx264 fallback profile.
func Software() Profile {
	return Profile{
		Codec:       "libx264",
		QualityArgs: []string{"-crf", "23"},
		Preset:      "ultrafast",
	}
}

// NVENC returns the NVIDIA hardware profile.
func NVENC() Profile {
	return Profile{
		Codec:       "h264_nvenc",
		HWAccelArgs: []string{"-hwaccel", "cuda"},
		QualityArgs: []string{"-cq", "23", "-spatial_aq", "1"},
		Preset:      "p4",
		Hardware:    true,
	}
}

// Detect probes for an NVIDIA GPU via nvidia-smi and returns the matching
// profile, falling back to software encoding when the probe fails.
func Detect(ctx context.Context, logger *slog.Logger) Profile {
	if logger == nil {
		logger = logging.NewNop()
	}

	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		logger.Info("nvidia-smi not found, using software encoder",
			logging.String("codec", "libx264"))
		return Software()
	}

	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	if err := exec.CommandContext(ctx, "nvidia-smi").Run(); err != nil {
		logger.Warn("GPU detection failed, falling back to software encoder",
			logging.Error(err))
		return Software()
	}

	logger.Info("NVIDIA GPU detected", logging.String("codec", "h264_nvenc"))
	return NVENC()
}
