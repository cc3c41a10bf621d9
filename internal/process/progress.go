package process

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// parseFFmpegProgress reads FFmpeg's `-progress pipe:1` key=value stream
// and emits a ProgressEvent per out_time_ms line, closing the returned
// channel when the stream ends or a `progress=end` line arrives.
func parseFFmpegProgress(r io.Reader, totalMs int64) <-chan ProgressEvent {
	out := make(chan ProgressEvent)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 4096), 1<<20)
		for scanner.Scan() {
			line := scanner.Text()
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)

			switch key {
			case "out_time_ms":
				// FFmpeg reports out_time_ms in microseconds despite the name.
				micros, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					continue
				}
				out <- ProgressEvent{CurrentMs: micros / 1000, TotalMs: totalMs}
			case "progress":
				if value == "end" {
					return
				}
			}
		}
	}()
	return out
}
