package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"
	"testing"
)

// buildWAV assembles a minimal RIFF/WAVE file around the given PCM payload.
func buildWAV(channels, sampleRate, bitDepth int, pcm []byte, extraChunk bool) []byte {
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(fmtChunk[4:8], uint32(sampleRate))
	byteRate := sampleRate * channels * bitDepth / 8
	binary.LittleEndian.PutUint32(fmtChunk[8:12], uint32(byteRate))
	binary.LittleEndian.PutUint16(fmtChunk[12:14], uint16(channels*bitDepth/8))
	binary.LittleEndian.PutUint16(fmtChunk[14:16], uint16(bitDepth))

	body := &bytes.Buffer{}
	body.WriteString("WAVE")
	writeChunk := func(id string, data []byte) {
		body.WriteString(id)
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
		body.Write(size[:])
		body.Write(data)
	}
	writeChunk("fmt ", fmtChunk)
	if extraChunk {
		writeChunk("LIST", []byte("metadata"))
	}
	writeChunk("data", pcm)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(body.Len()))
	buf.Write(size[:])
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	pcm := make([]byte, 8)
	binary.LittleEndian.PutUint16(pcm[0:2], uint16(int16(1000)))
	binary.LittleEndian.PutUint16(pcm[2:4], uint16(int16(-1000)))

	data := buildWAV(2, 44100, 16, pcm, false)
	format, samples, err := decodeWAV(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format.channels != 2 || format.sampleRate != 44100 || format.bitDepth != 16 {
		t.Fatalf("unexpected format: %+v", format)
	}
	if !bytes.Equal(samples, pcm) {
		t.Fatalf("PCM payload lost: %v", samples)
	}
}

func TestDecodeWAV_SkipsUnknownChunks(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	data := buildWAV(1, 8000, 16, pcm, true)

	format, samples, err := decodeWAV(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format.channels != 1 || !bytes.Equal(samples, pcm) {
		t.Fatalf("unexpected result: %+v %v", format, samples)
	}
}

func TestDecodeWAV_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("OGGS....WAVE")},
		{"truncated header", []byte("RIFF")},
		{"no data chunk", buildWAV(1, 8000, 16, nil, false)[:20]},
		{"unsupported bit depth", buildWAV(1, 8000, 8, []byte{1, 2}, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeWAV(tt.data); err == nil {
				t.Fatal("expected a decode error")
			}
		})
	}
}

func TestScaleSamples(t *testing.T) {
	in := make([]byte, 4)
	binary.LittleEndian.PutUint16(in[0:2], uint16(int16(1000)))
	binary.LittleEndian.PutUint16(in[2:4], uint16(int16(-2000)))

	out := scaleSamples(in, 50)
	if got := int16(binary.LittleEndian.Uint16(out[0:2])); got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(out[2:4])); got != -1000 {
		t.Fatalf("expected -1000, got %d", got)
	}

	// Full volume is identity, zero silences.
	if !bytes.Equal(scaleSamples(in, 100), in) {
		t.Fatal("expected identity at full volume")
	}
	for _, b := range scaleSamples(in, 0) {
		if b != 0 {
			t.Fatal("expected silence at zero volume")
		}
	}

	// Out-of-range volumes clamp rather than distort.
	if !bytes.Equal(scaleSamples(in, 150), in) {
		t.Fatal("expected clamp at 100")
	}
}

func TestPlayer_StopWhenIdle(t *testing.T) {
	p := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.Stop()
	p.Stop()
}

func TestPlayer_SetVolume(t *testing.T) {
	p := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.SetVolume(42)
	if got := p.targetVolume(); got != 42 {
		t.Fatalf("expected 42, got %.1f", got)
	}
}
