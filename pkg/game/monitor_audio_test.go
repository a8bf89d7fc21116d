package game

import (
	"encoding/binary"
	"math"
	"os"
	"testing"
)

func TestSynthesizeTone(t *testing.T) {
	t.Run("length", func(t *testing.T) {
		pcm := SynthesizeTone(1000, 0.5, 0)
		if want := MonitorSampleRate / 2 * 4; len(pcm) != want {
			t.Errorf("Expected %d bytes, got %d", want, len(pcm))
		}
	})

	t.Run("stereo channels match", func(t *testing.T) {
		pcm := SynthesizeTone(440, 0.01, 0)
		for i := 0; i+3 < len(pcm); i += 4 {
			if pcm[i] != pcm[i+2] || pcm[i+1] != pcm[i+3] {
				t.Fatalf("Left and right channels differ at frame %d", i/4)
			}
		}
	})

	t.Run("amplitude bounded", func(t *testing.T) {
		pcm := SynthesizeTone(1000, 0.1, 0)
		amplitude := monitorToneAmplitude
		limit := int16(math.MaxInt16*amplitude) + 1
		peak := int16(0)
		for i := 0; i+1 < len(pcm); i += 4 {
			sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
			if sample > limit || sample < -limit {
				t.Fatalf("Sample %d out of bounds at frame %d", sample, i/4)
			}
			if sample > peak {
				peak = sample
			}
		}
		if peak < limit/2 {
			t.Errorf("Expected audible tone, peak only %d", peak)
		}
	})

	t.Run("fade starts silent", func(t *testing.T) {
		pcm := SynthesizeTone(1000, 0.1, 0.01)
		first := int16(binary.LittleEndian.Uint16(pcm[0:]))
		last := int16(binary.LittleEndian.Uint16(pcm[len(pcm)-4:]))
		if first != 0 || last != 0 {
			t.Errorf("Expected silent edges, got first=%d last=%d", first, last)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if pcm := SynthesizeTone(1000, 0, 0); pcm != nil {
			t.Errorf("Expected nil PCM for zero duration, got %d bytes", len(pcm))
		}
	})
}

// TestMonitorAudioMuted 无音频上下文时仍然记录监护仪状态
func TestMonitorAudioMuted(t *testing.T) {
	m := NewMonitorAudio(nil, 2.0)

	m.OnBPMChanged(125)
	m.OnMonitorBeep()
	m.OnMonitorBeep()
	m.OnMonitorLongTone()
	m.OnMonitorLongTone()

	if m.BPM() != 125 {
		t.Errorf("BPM: got %v, want 125", m.BPM())
	}
	if m.BeepCount() != 2 {
		t.Errorf("BeepCount: got %d, want 2", m.BeepCount())
	}
	if !m.IsFlatlined() {
		t.Error("Expected flatline after long tone")
	}
	if m.volume != 1.0 {
		t.Errorf("Expected volume clamped to 1.0, got %v", m.volume)
	}

	m.StopLongTone()
	if m.IsFlatlined() {
		t.Error("Expected flatline cleared after StopLongTone")
	}

	if err := m.LoadSounds("missing.ogg", ""); err != nil {
		t.Errorf("LoadSounds in muted mode should be a no-op, got %v", err)
	}
}

func TestDecodeSoundFileUnsupported(t *testing.T) {
	path := t.TempDir() + "/beep.flac"
	if err := os.WriteFile(path, []byte("fLaC"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if _, err := decodeSoundFile(path); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if _, err := decodeSoundFile(t.TempDir() + "/missing.ogg"); err == nil {
		t.Error("Expected error for missing file")
	}
}
