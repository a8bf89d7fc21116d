package game

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/surgery/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// MonitorSampleRate 音频上下文采样率，与 app 创建的 audio.Context 一致
const MonitorSampleRate = 48000

// 合成音参数
const (
	monitorToneFrequency = 1000.0 // 监护仪音调（Hz）
	monitorToneAmplitude = 0.5    // 相对满幅的振幅
	beepSeconds          = 0.12
	beepFadeSeconds      = 0.005
	// 长鸣音单个循环周期，1000Hz 下恰好整数个波形，循环无爆音
	longToneLoopSeconds = 1.0
)

// MonitorAudio 心电监护仪输出端
//
// 实现 systems.VitalsListener：
//   - OnBPMChanged 更新显示用的心率
//   - OnMonitorBeep 播放一次短促提示音
//   - OnMonitorLongTone 循环播放长鸣音，直到 StopLongTone
//
// audio.Context 为 nil 时进入静音模式，只记录状态（用于无头运行和测试）。
type MonitorAudio struct {
	context *audio.Context
	volume  float64

	beepPlayer     *audio.Player
	longTonePlayer *audio.Player

	bpm       float64
	beepCount int
	flatlined bool
}

// NewMonitorAudio 创建监护仪音频
//
// 参数：
//   - context: ebiten 音频上下文，可为 nil（静音模式）
//   - volume: 音量 0.0 ~ 1.0
func NewMonitorAudio(context *audio.Context, volume float64) *MonitorAudio {
	m := &MonitorAudio{
		context: context,
		volume:  clampVolume(volume),
	}
	if context == nil {
		log.Printf("[MonitorAudio] No audio context, running muted")
		return m
	}

	beep, err := context.NewPlayer(bytes.NewReader(SynthesizeTone(monitorToneFrequency, beepSeconds, beepFadeSeconds)))
	if err != nil {
		log.Printf("[MonitorAudio] Warning: Failed to create beep player: %v", err)
	} else {
		m.beepPlayer = beep
	}

	loop := SynthesizeTone(monitorToneFrequency, longToneLoopSeconds, 0)
	longTone, err := context.NewPlayer(audio.NewInfiniteLoop(bytes.NewReader(loop), int64(len(loop))))
	if err != nil {
		log.Printf("[MonitorAudio] Warning: Failed to create long tone player: %v", err)
	} else {
		m.longTonePlayer = longTone
	}

	m.applyVolume()
	return m
}

// LoadSounds 用音效文件替换合成音
// 空路径保留合成音；静音模式下直接返回
func (m *MonitorAudio) LoadSounds(beepPath, longTonePath string) error {
	if m.context == nil {
		return nil
	}

	if beepPath != "" {
		stream, err := decodeSoundFile(beepPath)
		if err != nil {
			return err
		}
		player, err := m.context.NewPlayer(stream)
		if err != nil {
			return fmt.Errorf("failed to create beep player for %s: %w", beepPath, err)
		}
		m.beepPlayer = player
		log.Printf("[MonitorAudio] Beep sound loaded from %s", beepPath)
	}

	if longTonePath != "" {
		stream, err := decodeSoundFile(longTonePath)
		if err != nil {
			return err
		}
		player, err := m.context.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
		if err != nil {
			return fmt.Errorf("failed to create long tone player for %s: %w", longTonePath, err)
		}
		m.longTonePlayer = player
		log.Printf("[MonitorAudio] Long tone loaded from %s", longTonePath)
	}

	m.applyVolume()
	return nil
}

// OnBPMChanged 心率变化
func (m *MonitorAudio) OnBPMChanged(bpm float64) {
	m.bpm = bpm
}

// OnMonitorBeep 危机期间的心跳提示音
func (m *MonitorAudio) OnMonitorBeep() {
	m.beepCount++
	if m.beepPlayer == nil {
		return
	}
	if err := m.beepPlayer.Rewind(); err != nil {
		log.Printf("[MonitorAudio] Warning: Failed to rewind beep: %v", err)
	}
	m.beepPlayer.Play()
}

// OnMonitorLongTone 病人死亡，开始长鸣
func (m *MonitorAudio) OnMonitorLongTone() {
	if m.flatlined {
		return
	}
	m.flatlined = true
	log.Printf("[MonitorAudio] Flatline")

	if m.longTonePlayer == nil {
		return
	}
	if err := m.longTonePlayer.Rewind(); err != nil {
		log.Printf("[MonitorAudio] Warning: Failed to rewind long tone: %v", err)
	}
	m.longTonePlayer.Play()
}

// StopLongTone 停止长鸣（重新开始一台手术时调用）
func (m *MonitorAudio) StopLongTone() {
	m.flatlined = false
	if m.longTonePlayer != nil && m.longTonePlayer.IsPlaying() {
		m.longTonePlayer.Pause()
	}
}

// SetVolume 设置音量
func (m *MonitorAudio) SetVolume(volume float64) {
	m.volume = clampVolume(volume)
	m.applyVolume()
}

// BPM 最近一次显示的心率
func (m *MonitorAudio) BPM() float64 {
	return m.bpm
}

// BeepCount 已播放的提示音次数
func (m *MonitorAudio) BeepCount() int {
	return m.beepCount
}

// IsFlatlined 是否正在长鸣
func (m *MonitorAudio) IsFlatlined() bool {
	return m.flatlined
}

func (m *MonitorAudio) applyVolume() {
	if m.beepPlayer != nil {
		m.beepPlayer.SetVolume(m.volume)
	}
	if m.longTonePlayer != nil {
		m.longTonePlayer.SetVolume(m.volume)
	}
}

// SynthesizeTone 生成正弦波 PCM（16 位有符号小端、立体声、MonitorSampleRate）
//
// 参数：
//   - frequency: 频率（Hz）
//   - seconds: 时长
//   - fadeSeconds: 首尾线性淡入淡出时长，0 表示不淡入淡出（用于循环）
func SynthesizeTone(frequency, seconds, fadeSeconds float64) []byte {
	samples := int(seconds * MonitorSampleRate)
	if samples <= 0 {
		return nil
	}
	fadeSamples := int(fadeSeconds * MonitorSampleRate)

	buf := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		envelope := 1.0
		if fadeSamples > 0 {
			if i < fadeSamples {
				envelope = float64(i) / float64(fadeSamples)
			} else if remaining := samples - 1 - i; remaining < fadeSamples {
				envelope = float64(remaining) / float64(fadeSamples)
			}
		}

		v := math.Sin(2*math.Pi*frequency*float64(i)/MonitorSampleRate) * monitorToneAmplitude * envelope
		sample := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[4*i:], sample)
		binary.LittleEndian.PutUint16(buf[4*i+2:], sample)
	}
	return buf
}

// decodeSoundFile 按扩展名解码音效文件并重采样到 MonitorSampleRate
func decodeSoundFile(path string) (interface {
	io.ReadSeeker
	Length() int64
}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound file %s: %w", path, err)
	}
	reader := bytes.NewReader(data)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		stream, err := mp3.DecodeWithSampleRate(MonitorSampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 sound %s: %w", path, err)
		}
		return stream, nil
	case ".ogg":
		stream, err := vorbis.DecodeWithSampleRate(MonitorSampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG sound %s: %w", path, err)
		}
		return stream, nil
	case ".wav":
		stream, err := wav.DecodeWithSampleRate(MonitorSampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV sound %s: %w", path, err)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("unsupported sound format: %s (supported: .mp3, .ogg, .wav)", ext)
	}
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	return utils.Clamp(volume, 0.0, 1.0)
}
