// Package ffmpeg implements the decoding collaborator on top of the
// ffmpeg/ffprobe binaries, invoked as black boxes that either return a
// decoded waveform or fail. MP3 sources take an in-process fast path.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/seren-labs/serenade/internal/core/domain"
)

// SampleRate is the canonical analysis rate; every decode resamples to it.
const SampleRate = 22050

// Decoder shells out to ffmpeg for arbitrary containers and decodes mp3
// files directly.
type Decoder struct {
	ffmpegPath  string
	ffprobePath string
}

func NewDecoder() *Decoder {
	return &Decoder{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe"}
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration reports the source length in seconds via ffprobe.
func (d *Decoder) Duration(ctx context.Context, sourcePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "quiet", "-print_format", "json", "-show_format", sourcePath)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffmpeg: probe %s: %w: %v", sourcePath, domain.ErrDecodeFailed, err)
	}

	var parsed probeFormat
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("ffmpeg: probe output for %s: %w: %v", sourcePath, domain.ErrDecodeFailed, err)
	}
	dur, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil || dur <= 0 {
		return 0, fmt.Errorf("ffmpeg: no duration for %s: %w", sourcePath, domain.ErrDecodeFailed)
	}
	return dur, nil
}

// Decode extracts [offset, offset+length) seconds of mono audio at the
// canonical sample rate.
func (d *Decoder) Decode(ctx context.Context, sourcePath string, offsetSeconds, lengthSeconds float64) (domain.AudioClip, error) {
	if lengthSeconds <= 0 {
		return domain.AudioClip{}, fmt.Errorf("ffmpeg: non-positive decode length: %w", domain.ErrDecodeFailed)
	}

	if strings.EqualFold(filepath.Ext(sourcePath), ".mp3") && offsetSeconds == 0 {
		clip, err := d.decodeMP3(sourcePath, lengthSeconds)
		if err == nil {
			return clip, nil
		}
		// Fall through to ffmpeg; the file may be mislabeled.
	}

	args := []string{
		"-v", "quiet",
		"-ss", formatSeconds(offsetSeconds),
		"-t", formatSeconds(lengthSeconds),
		"-i", sourcePath,
		"-vn",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", "1",
		"-",
	}
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return domain.AudioClip{}, fmt.Errorf("ffmpeg: decode %s: %w: %v", sourcePath, domain.ErrDecodeFailed, err)
	}

	raw := stdout.Bytes()
	if len(raw) < 4 {
		return domain.AudioClip{}, fmt.Errorf("ffmpeg: %s produced no samples: %w", sourcePath, domain.ErrDecodeFailed)
	}
	samples := make([]float64, len(raw)/4)
	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return domain.AudioClip{Samples: samples, SampleRate: SampleRate}, nil
}

// decodeMP3 reads an mp3 from the front of the file without shelling out.
// go-mp3 yields interleaved 16-bit stereo at the file's native rate; the
// channels are averaged down to mono.
func (d *Decoder) decodeMP3(sourcePath string, lengthSeconds float64) (domain.AudioClip, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("ffmpeg: open %s: %w: %v", sourcePath, domain.ErrDecodeFailed, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return domain.AudioClip{}, fmt.Errorf("ffmpeg: mp3 decode %s: %w: %v", sourcePath, domain.ErrDecodeFailed, err)
	}

	rate := dec.SampleRate()
	maxSamples := int(lengthSeconds * float64(rate))

	var samples []float64
	buf := make([]byte, 4096)
	for len(samples) < maxSamples {
		n, err := dec.Read(buf)
		for i := 0; i+3 < n; i += 4 {
			left := int16(buf[i]) | int16(buf[i+1])<<8
			right := int16(buf[i+2]) | int16(buf[i+3])<<8
			samples = append(samples, (float64(left)+float64(right))/2/32768.0)
			if len(samples) >= maxSamples {
				break
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return domain.AudioClip{}, fmt.Errorf("ffmpeg: mp3 read %s: %w: %v", sourcePath, domain.ErrDecodeFailed, err)
		}
	}
	if len(samples) == 0 {
		return domain.AudioClip{}, fmt.Errorf("ffmpeg: mp3 %s contains no samples: %w", sourcePath, domain.ErrDecodeFailed)
	}
	return domain.AudioClip{Samples: samples, SampleRate: rate}, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
