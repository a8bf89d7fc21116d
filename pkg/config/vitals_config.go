package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VitalsConfig 病人生命体征与心脏危机调校参数
// 默认值与 data/vitals.yaml 保持一致
type VitalsConfig struct {
	NormalBPM       float64 `yaml:"normalBpm"`       // 正常心率基线
	CriticalBPM     float64 `yaml:"criticalBpm"`     // 心脏病发作时的心率基线
	AboutToDieBPM   float64 `yaml:"aboutToDieBpm"`   // 濒死心率
	ModulationRange float64 `yaml:"modulationRange"` // 随机游走相对参考心率的最大偏移
	RecoveryTime    float64 `yaml:"recoveryTime"`    // 危机解除后心率回落到正常值所需秒数

	// AnestheticClockLength 麻醉时钟时长（秒），作为危机触发方的默认周期
	AnestheticClockLength float64 `yaml:"anestheticClockLength"`

	// DefibrillationsRequired 每次危机需要的除颤次数
	DefibrillationsRequired int `yaml:"defibrillationsRequired"`

	// MonitorVolume 监护仪提示音音量 0.0 ~ 1.0
	MonitorVolume float64 `yaml:"monitorVolume"`

	// BeepSound / LongToneSound 可选的监护仪音效文件（.ogg/.mp3/.wav），为空时使用合成音
	BeepSound     string `yaml:"beepSound,omitempty"`
	LongToneSound string `yaml:"longToneSound,omitempty"`
}

// 默认调校值
const (
	DefaultNormalBPM               = 80.0
	DefaultCriticalBPM             = 170.0
	DefaultAboutToDieBPM           = 210.0
	DefaultModulationRange         = 20.0
	DefaultRecoveryTime            = 1.0
	DefaultAnestheticClockLength   = 180.0
	DefaultDefibrillationsRequired = 3
	DefaultMonitorVolume           = 0.6
)

// DefaultVitalsConfig 返回默认调校参数
func DefaultVitalsConfig() *VitalsConfig {
	return &VitalsConfig{
		NormalBPM:               DefaultNormalBPM,
		CriticalBPM:             DefaultCriticalBPM,
		AboutToDieBPM:           DefaultAboutToDieBPM,
		ModulationRange:         DefaultModulationRange,
		RecoveryTime:            DefaultRecoveryTime,
		AnestheticClockLength:   DefaultAnestheticClockLength,
		DefibrillationsRequired: DefaultDefibrillationsRequired,
		MonitorVolume:           DefaultMonitorVolume,
	}
}

// LoadVitalsConfig 从YAML文件加载生命体征配置
//
// 参数：
//   - filepath: 配置文件路径
//
// 返回：
//   - *VitalsConfig: 解析并补全默认值后的配置
//   - error: 文件读取、解析或校验失败
func LoadVitalsConfig(filepath string) (*VitalsConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vitals config file %s: %w", filepath, err)
	}

	cfg, err := ParseVitalsConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return cfg, nil
}

// ParseVitalsConfig 从内存中的 YAML 数据解析配置（用于嵌入的默认配置）
// 以默认值为底，YAML 中出现的键才会覆盖，显式写出的 0 也会生效
func ParseVitalsConfig(data []byte) (*VitalsConfig, error) {
	cfg := DefaultVitalsConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse vitals config YAML: %w", err)
	}

	if err := validateVitalsConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid vitals config: %w", err)
	}
	return cfg, nil
}

// VitalsOverrides 玩家本地的调校覆盖值
// nil 字段表示不覆盖，非 nil 的零值同样是有效覆盖
type VitalsOverrides struct {
	NormalBPM               *float64 `yaml:"normalBpm,omitempty"`
	CriticalBPM             *float64 `yaml:"criticalBpm,omitempty"`
	AboutToDieBPM           *float64 `yaml:"aboutToDieBpm,omitempty"`
	ModulationRange         *float64 `yaml:"modulationRange,omitempty"`
	RecoveryTime            *float64 `yaml:"recoveryTime,omitempty"`
	AnestheticClockLength   *float64 `yaml:"anestheticClockLength,omitempty"`
	DefibrillationsRequired *int     `yaml:"defibrillationsRequired,omitempty"`
	MonitorVolume           *float64 `yaml:"monitorVolume,omitempty"`
	BeepSound               *string  `yaml:"beepSound,omitempty"`
	LongToneSound           *string  `yaml:"longToneSound,omitempty"`
}

// Merge 用 overrides 中设置过的字段覆盖当前配置，返回新的配置
// 用于叠加玩家本地的调校覆盖值
func (c *VitalsConfig) Merge(overrides *VitalsOverrides) (*VitalsConfig, error) {
	merged := *c
	if overrides == nil {
		return &merged, nil
	}
	override(&merged.NormalBPM, overrides.NormalBPM)
	override(&merged.CriticalBPM, overrides.CriticalBPM)
	override(&merged.AboutToDieBPM, overrides.AboutToDieBPM)
	override(&merged.ModulationRange, overrides.ModulationRange)
	override(&merged.RecoveryTime, overrides.RecoveryTime)
	override(&merged.AnestheticClockLength, overrides.AnestheticClockLength)
	override(&merged.DefibrillationsRequired, overrides.DefibrillationsRequired)
	override(&merged.MonitorVolume, overrides.MonitorVolume)
	override(&merged.BeepSound, overrides.BeepSound)
	override(&merged.LongToneSound, overrides.LongToneSound)

	if err := validateVitalsConfig(&merged); err != nil {
		return nil, fmt.Errorf("invalid vitals overrides: %w", err)
	}
	return &merged, nil
}

func override[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// validateVitalsConfig 验证配置合法性
func validateVitalsConfig(cfg *VitalsConfig) error {
	if cfg.NormalBPM <= 0 {
		return fmt.Errorf("normalBpm must be positive, got %.1f", cfg.NormalBPM)
	}
	if cfg.CriticalBPM < cfg.NormalBPM {
		return fmt.Errorf("criticalBpm (%.1f) must not be below normalBpm (%.1f)", cfg.CriticalBPM, cfg.NormalBPM)
	}
	if cfg.AboutToDieBPM < cfg.CriticalBPM {
		return fmt.Errorf("aboutToDieBpm (%.1f) must not be below criticalBpm (%.1f)", cfg.AboutToDieBPM, cfg.CriticalBPM)
	}
	if cfg.ModulationRange < 0 {
		return fmt.Errorf("modulationRange cannot be negative, got %.1f", cfg.ModulationRange)
	}
	if cfg.RecoveryTime < 0 {
		return fmt.Errorf("recoveryTime cannot be negative, got %.2f", cfg.RecoveryTime)
	}
	if cfg.AnestheticClockLength <= 0 {
		return fmt.Errorf("anestheticClockLength must be positive, got %.1f", cfg.AnestheticClockLength)
	}
	if cfg.DefibrillationsRequired < 1 {
		return fmt.Errorf("defibrillationsRequired must be at least 1, got %d", cfg.DefibrillationsRequired)
	}
	if cfg.MonitorVolume < 0 || cfg.MonitorVolume > 1 {
		return fmt.Errorf("monitorVolume must be between 0 and 1, got %.2f", cfg.MonitorVolume)
	}
	return nil
}
