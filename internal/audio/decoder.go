package audio

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Clip is a decoded mono PCM buffer
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Decoder decodes a media file into a mono PCM clip at a fixed sample rate
type Decoder interface {
	Decode(ctx context.Context, path string) (*Clip, error)
}

// FFmpegDecoder decodes WAV/MP4/M4A input by shelling out to ffmpeg,
// downmixing to mono and resampling to the configured rate
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
	sampleRate  int
	maxDuration time.Duration
	timeout     time.Duration
}

// DecoderConfig holds configuration for the ffmpeg decoder
type DecoderConfig struct {
	FFmpegPath  string
	FFprobePath string
	SampleRate  int
	MaxDuration time.Duration
	Timeout     time.Duration
}

// NewFFmpegDecoder creates a decoder, filling unset fields with defaults
func NewFFmpegDecoder(cfg DecoderConfig) *FFmpegDecoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 22050
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &FFmpegDecoder{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		sampleRate:  cfg.SampleRate,
		maxDuration: cfg.MaxDuration,
		timeout:     cfg.Timeout,
	}
}

// Decode probes the file for an audio stream, then decodes it to mono
// float64 PCM at the target sample rate
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (*Clip, error) {
	meta, err := d.probe(ctx, path)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Str("codec", meta.Codec).
		Int("input_sample_rate", meta.SampleRate).
		Int("input_channels", meta.Channels).
		Float64("input_duration", meta.Duration).
		Msg("Decoding audio stream")

	args := []string{
		"-v", "error",
		"-i", path,
		"-vn",
		"-map", "0:a:0",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.sampleRate),
	}
	if d.maxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.maxDuration.Seconds()))
	}
	args = append(args, "pipe:1")

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffmpeg decode failed: %w, stderr: %s", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded from %s", path)
	}

	return &Clip{Samples: samples, SampleRate: d.sampleRate}, nil
}

// probeMetadata holds the audio stream properties reported by ffprobe
type probeMetadata struct {
	Codec      string
	SampleRate int
	Channels   int
	Duration   float64
}

func (d *FFmpegDecoder) probe(ctx context.Context, path string) (*probeMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream found in %s", path)
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("first selected stream is not audio: %s", stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		sampleRate = 0
	}
	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	return &probeMetadata{
		Codec:      stream.CodecName,
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Duration:   duration,
	}, nil
}

// bytesToFloat64 converts raw little-endian float64 PCM bytes to samples
func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		data = data[:len(data)-(len(data)%8)]
	}
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}
