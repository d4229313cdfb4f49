package ffprobe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type probeResult struct {
	Format probeFormat `json:"format"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Duration returns the media duration in seconds as reported by ffprobe.
func Duration(filePath string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, fmt.Errorf("parse ffprobe output failed: %w", err)
	}

	seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse media duration %q failed: %w", result.Format.Duration, err)
	}
	return seconds, nil
}
