// Package audio implements the ringtone playback capability on oto,
// looping a WAV file until stopped.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

// The hardware audio context can be created only once per process; the
// first sound's format wins.
var (
	otoCtx  *oto.Context
	otoOnce sync.Once
	otoErr  error
)

func audioContext(f wavFormat) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   f.sampleRate,
			ChannelCount: f.channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Player implements ports.SoundPlayer.
type Player struct {
	logger *slog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	playing bool
	volume  float64
}

var _ ports.SoundPlayer = (*Player)(nil)

// New creates an idle player.
func New(logger *slog.Logger) *Player {
	return &Player{logger: logger}
}

// Play starts looped playback of the WAV file at uri. With stepIncrease the
// volume ramps from a low starting point up to the target, one step per
// loop iteration. Any running playback is replaced.
func (p *Player) Play(ctx context.Context, uri string, volume float64, stepIncrease bool) error {
	data, err := os.ReadFile(uri)
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s", domain.ErrMediaPermission, uri)
	}
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: sound %s", domain.ErrNotFound, uri)
	}
	if err != nil {
		return err
	}

	format, samples, err := decodeWAV(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, uri, err)
	}

	octx, err := audioContext(format)
	if err != nil {
		return fmt.Errorf("audio context: %w", err)
	}

	p.mu.Lock()
	p.stopLocked()
	stop := make(chan struct{})
	p.stop = stop
	p.playing = true
	p.volume = volume
	p.mu.Unlock()

	start := volume
	if stepIncrease && start > 20 {
		start = 20
	}

	go p.loop(octx, samples, stop, start)
	return nil
}

// SetVolume adjusts the target volume; applied on the next loop iteration.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

// Stop halts playback. Stopping an idle player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.playing {
		close(p.stop)
		p.playing = false
	}
}

func (p *Player) loop(octx *oto.Context, samples []byte, stop chan struct{}, volume float64) {
	const rampStep = 15.0
	for {
		target := p.targetVolume()
		if volume > target {
			volume = target
		}

		player := octx.NewPlayer(bytes.NewReader(scaleSamples(samples, volume)))
		player.Play()

		for player.IsPlaying() {
			select {
			case <-stop:
				player.Pause()
				player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		if err := player.Close(); err != nil {
			p.logger.Warn("audio player close failed", slog.Any("error", err))
		}

		select {
		case <-stop:
			return
		default:
		}

		if volume < target {
			volume = min(volume+rampStep, target)
		}
	}
}

func (p *Player) targetVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// scaleSamples applies a 0-100 volume to signed 16-bit little-endian PCM.
func scaleSamples(samples []byte, volume float64) []byte {
	factor := volume / 100
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	out := make([]byte, len(samples))
	for i := 0; i+1 < len(samples); i += 2 {
		s := int16(binary.LittleEndian.Uint16(samples[i:]))
		binary.LittleEndian.PutUint16(out[i:], uint16(int16(float64(s)*factor)))
	}
	return out
}

type wavFormat struct {
	sampleRate int
	channels   int
	bitDepth   int
}

// decodeWAV extracts the format and raw PCM data from a WAV file. Only
// 16-bit PCM is supported.
func decodeWAV(data []byte) (wavFormat, []byte, error) {
	r := bytes.NewReader(data)

	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return wavFormat{}, nil, err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return wavFormat{}, nil, errors.New("not a WAV file")
	}

	var format wavFormat
	haveFmt := false

	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return wavFormat{}, nil, errors.New("no data chunk")
			}
			return wavFormat{}, nil, err
		}
		chunkID := string(header[0:4])
		chunkSize := binary.LittleEndian.Uint32(header[4:8])

		switch chunkID {
		case "fmt ":
			chunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return wavFormat{}, nil, err
			}
			if len(chunk) < 16 {
				return wavFormat{}, nil, errors.New("short fmt chunk")
			}
			format.channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			format.sampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			format.bitDepth = int(binary.LittleEndian.Uint16(chunk[14:16]))
			if format.bitDepth != 16 {
				return wavFormat{}, nil, fmt.Errorf("unsupported bit depth %d", format.bitDepth)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return wavFormat{}, nil, errors.New("data chunk before fmt chunk")
			}
			pcm := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return wavFormat{}, nil, err
			}
			return format, pcm, nil
		default:
			if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return wavFormat{}, nil, err
			}
		}
	}
}
