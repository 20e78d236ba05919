package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WriteWAVFile writes a mono clip to path as 16-bit PCM WAV
func WriteWAVFile(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer f.Close()

	if err := WriteWAV(f, clip); err != nil {
		return fmt.Errorf("failed to write wav file: %w", err)
	}
	return nil
}

// WriteWAV encodes a mono clip as 16-bit PCM WAV. Samples outside
// [-1, 1] are clipped.
func WriteWAV(w io.Writer, clip *Clip) error {
	if clip == nil || len(clip.Samples) == 0 {
		return fmt.Errorf("empty clip")
	}
	if clip.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", clip.SampleRate)
	}

	dataSize := len(clip.Samples) * 2
	byteRate := clip.SampleRate * 2

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(clip.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(header[34:36], 16) // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	pcm := make([]byte, dataSize)
	for i, s := range clip.Samples {
		v := s
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		binary.LittleEndian.PutUint16(pcm[i*2:i*2+2], uint16(int16(v*32767)))
	}
	_, err := w.Write(pcm)
	return err
}

// ReadWAVFile reads a 16-bit PCM WAV file into a mono clip
func ReadWAVFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	return ReadWAV(f)
}

// ReadWAV decodes a 16-bit PCM WAV stream. Multi-channel input is
// downmixed to mono by averaging.
func ReadWAV(r io.Reader) (*Clip, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		sampleRate int
		channels   int
		bitDepth   int
		data       []byte
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported WAV format code: %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			data = make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("failed to read data chunk: %w", err)
			}
		default:
			// Skip unknown chunks (LIST, fact, ...)
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("failed to skip %q chunk: %w", id, err)
			}
		}

		if sampleRate > 0 && data != nil {
			break
		}
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if data == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	if bitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (want 16)", bitDepth)
	}

	frameSize := channels * 2
	numFrames := len(data) / frameSize
	samples := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			off := i*frameSize + ch*2
			v := int16(binary.LittleEndian.Uint16(data[off : off+2]))
			sum += float64(v) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}

	return &Clip{Samples: samples, SampleRate: sampleRate}, nil
}

// Sine generates a pure tone clip, used by tests and calibration
func Sine(freq float64, sampleRate int, duration float64, amplitude float64) *Clip {
	n := int(float64(sampleRate) * duration)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &Clip{Samples: samples, SampleRate: sampleRate}
}
