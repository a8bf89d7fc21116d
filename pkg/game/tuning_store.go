package game

import (
	"fmt"
	"log"

	"github.com/decker502/surgery/pkg/config"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// TuningStore 玩家本地的生命体征调校覆盖值
// 只保存调校参数（配置），不保存任何模拟状态
type TuningStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	overrides    *config.VitalsOverrides
}

// 存储路径常量
const (
	tuningObject   = "tuning"
	tuningProperty = "vitals"
)

// NewTuningStore 创建调校存储
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，仅内存）
//
// 加载失败不是致命错误，使用空覆盖值
func NewTuningStore(gdataManager *gdata.Manager) *TuningStore {
	ts := &TuningStore{
		gdataManager: gdataManager,
		overrides:    &config.VitalsOverrides{},
	}
	if err := ts.Load(); err != nil {
		log.Printf("[TuningStore] Warning: Failed to load tuning overrides: %v (using defaults)", err)
	}
	return ts
}

// Load 从 gdata 加载覆盖值
func (ts *TuningStore) Load() error {
	ts.overrides = &config.VitalsOverrides{}

	if ts.gdataManager == nil {
		return nil
	}
	if !ts.gdataManager.ObjectPropExists(tuningObject, tuningProperty) {
		return nil
	}

	data, err := ts.gdataManager.LoadObjectProp(tuningObject, tuningProperty)
	if err != nil {
		return fmt.Errorf("failed to load tuning overrides: %w", err)
	}

	var loaded config.VitalsOverrides
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal tuning overrides: %w", err)
	}

	ts.overrides = &loaded
	log.Printf("[TuningStore] Tuning overrides loaded")
	return nil
}

// Save 保存覆盖值到 gdata
// 降级模式下不报错
func (ts *TuningStore) Save() error {
	if ts.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(ts.overrides)
	if err != nil {
		return fmt.Errorf("failed to marshal tuning overrides: %w", err)
	}
	if err := ts.gdataManager.SaveObjectProp(tuningObject, tuningProperty, data); err != nil {
		return fmt.Errorf("failed to save tuning overrides: %w", err)
	}

	log.Printf("[TuningStore] Tuning overrides saved")
	return nil
}

// Overrides 当前覆盖值（nil 字段表示不覆盖）
func (ts *TuningStore) Overrides() *config.VitalsOverrides {
	return ts.overrides
}

// SetMonitorVolume 设置监护仪音量覆盖值
// 仅修改内存，需调用 Save() 持久化
func (ts *TuningStore) SetMonitorVolume(volume float64) {
	volume = clampVolume(volume)
	ts.overrides.MonitorVolume = &volume
}

// SetDefibrillationsRequired 设置每次危机需要的除颤次数
func (ts *TuningStore) SetDefibrillationsRequired(count int) {
	if count < 1 {
		count = 1
	}
	ts.overrides.DefibrillationsRequired = &count
}

// Apply 把覆盖值叠加到基础配置上
// 覆盖值非法时返回错误，调用方应回退到基础配置
func (ts *TuningStore) Apply(base *config.VitalsConfig) (*config.VitalsConfig, error) {
	return base.Merge(ts.overrides)
}
