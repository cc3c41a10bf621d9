// Package app holds process-wide configuration for the editor core: external
// binary locations, data/temp directories, worker pool sizes, and the tunables
// named throughout the spec (autosave cadence, cache budgets, TTS timeouts).
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	FFmpeg     FFmpegConfig     `mapstructure:"ffmpeg"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Job        JobConfig        `mapstructure:"job"`
	Autosave   AutosaveConfig   `mapstructure:"autosave"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Transcribe TranscribeConfig `mapstructure:"transcribe"`
	Log        LogConfig        `mapstructure:"log"`
}

type FFmpegConfig struct {
	BinaryPath  string        `mapstructure:"binary_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CancelGrace time.Duration `mapstructure:"cancel_grace"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
	TempDir string `mapstructure:"temp_dir"`
}

type JobConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type AutosaveConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	IdleWindow time.Duration `mapstructure:"idle_window"`
}

type TTSConfig struct {
	Timeout               time.Duration `mapstructure:"timeout"`
	InterSegmentSilenceMs int64         `mapstructure:"inter_segment_silence_ms"`
	RequestsPerSecond     float64       `mapstructure:"requests_per_second"`
	ElevenLabsAPIKey      string        `mapstructure:"elevenlabs_api_key"`
}

type CacheConfig struct {
	MaxWaveformBytes  int64 `mapstructure:"max_waveform_bytes"`
	MaxFrameDiskBytes int64 `mapstructure:"max_frame_disk_bytes"`
}

type TranscribeConfig struct {
	ChunkSeconds float64 `mapstructure:"chunk_seconds"`
	ModelID      string  `mapstructure:"model_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from ./config.yaml (or /etc/fmmcore/config.yaml),
// overlaying FMMCORE_-prefixed environment variables, following defaults
// suitable for a single-user desktop install.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/fmmcore/")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FMMCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("ffmpeg.binary_path", "ffmpeg")
	viper.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	viper.SetDefault("ffmpeg.timeout", "1h")
	viper.SetDefault("ffmpeg.cancel_grace", "2s")

	viper.SetDefault("storage.data_dir", "./data")
	viper.SetDefault("storage.temp_dir", "./temp")

	viper.SetDefault("job.workers", 4)
	viper.SetDefault("job.queue_size", 64)

	viper.SetDefault("autosave.interval", "30s")
	viper.SetDefault("autosave.idle_window", "5s")

	viper.SetDefault("tts.timeout", "30s")
	viper.SetDefault("tts.inter_segment_silence_ms", 200)
	viper.SetDefault("tts.requests_per_second", 4.0)
	viper.SetDefault("tts.elevenlabs_api_key", "")

	viper.SetDefault("cache.max_waveform_bytes", 64*1024*1024)
	viper.SetDefault("cache.max_frame_disk_bytes", 512*1024*1024)

	viper.SetDefault("transcribe.chunk_seconds", 5.0)
	viper.SetDefault("transcribe.model_id", "base")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}
