package audio

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}
}

func TestFFmpegDecoderWAV(t *testing.T) {
	requireFFmpeg(t)

	// write a 440 Hz tone at a different rate, decoder must resample
	src := Sine(440, 44100, 0.5, 0.5)
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, WriteWAVFile(path, src))

	decoder := NewFFmpegDecoder(DecoderConfig{})
	clip, err := decoder.Decode(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 22050, clip.SampleRate)
	assert.InDelta(t, 0.5, clip.Duration(), 0.05)
}

func TestFFmpegDecoderMissingFile(t *testing.T) {
	requireFFmpeg(t)

	decoder := NewFFmpegDecoder(DecoderConfig{})
	_, err := decoder.Decode(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}

func TestFFmpegDecoderNonAudioFile(t *testing.T) {
	requireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "not-audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not audio"), 0644))

	decoder := NewFFmpegDecoder(DecoderConfig{})
	_, err := decoder.Decode(context.Background(), path)
	assert.Error(t, err)
}

func TestFFmpegDecoderMaxDuration(t *testing.T) {
	requireFFmpeg(t)

	src := Sine(220, 22050, 2.0, 0.5)
	path := filepath.Join(t.TempDir(), "long.wav")
	require.NoError(t, WriteWAVFile(path, src))

	decoder := NewFFmpegDecoder(DecoderConfig{MaxDuration: 1 * time.Second})
	clip, err := decoder.Decode(context.Background(), path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, clip.Duration(), 0.05)
}
