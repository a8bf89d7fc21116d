package game

import (
	"testing"

	"github.com/decker502/surgery/pkg/config"
	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时目录中打开 gdata 存储
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Skipf("gdata storage unavailable: %v", err)
	}
	return manager
}

// TestTuningStoreNilGdata 降级模式：只在内存中保存覆盖值
func TestTuningStoreNilGdata(t *testing.T) {
	ts := NewTuningStore(nil)

	ts.SetMonitorVolume(0.3)
	if err := ts.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail, got %v", err)
	}
	if v := ts.Overrides().MonitorVolume; v == nil || *v != 0.3 {
		t.Errorf("MonitorVolume: got %v, want 0.3", v)
	}

	// Load 会清空内存中的覆盖值
	if err := ts.Load(); err != nil {
		t.Errorf("Load() in degraded mode should not fail, got %v", err)
	}
	if ts.Overrides().MonitorVolume != nil {
		t.Errorf("Expected overrides reset after Load, got %v", *ts.Overrides().MonitorVolume)
	}
}

// TestTuningStoreLoadSave 覆盖值在 gdata 中往返
func TestTuningStoreLoadSave(t *testing.T) {
	manager := openTestGdata(t, "test_surgery_tuning")

	ts := NewTuningStore(manager)
	ts.SetMonitorVolume(0.25)
	ts.SetDefibrillationsRequired(5)
	if err := ts.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := NewTuningStore(manager)
	if v := reloaded.Overrides().MonitorVolume; v == nil || *v != 0.25 {
		t.Errorf("MonitorVolume: got %v, want 0.25", v)
	}
	if v := reloaded.Overrides().DefibrillationsRequired; v == nil || *v != 5 {
		t.Errorf("DefibrillationsRequired: got %v, want 5", v)
	}
	if reloaded.Overrides().NormalBPM != nil {
		t.Errorf("Unset fields should stay nil, got NormalBPM %v", *reloaded.Overrides().NormalBPM)
	}
}

// TestTuningStoreApply 覆盖值叠加到默认配置
func TestTuningStoreApply(t *testing.T) {
	ts := NewTuningStore(nil)
	ts.SetDefibrillationsRequired(0)
	ts.SetMonitorVolume(1.5)

	merged, err := ts.Apply(config.DefaultVitalsConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if merged.DefibrillationsRequired != 1 {
		t.Errorf("DefibrillationsRequired: got %d, want 1", merged.DefibrillationsRequired)
	}
	if merged.MonitorVolume != 1.0 {
		t.Errorf("MonitorVolume: got %v, want 1.0", merged.MonitorVolume)
	}
	if merged.NormalBPM != config.DefaultNormalBPM {
		t.Errorf("NormalBPM: got %v, want %v", merged.NormalBPM, config.DefaultNormalBPM)
	}
}

// TestTuningStoreApplyMuted 音量覆盖为 0 时静音
func TestTuningStoreApplyMuted(t *testing.T) {
	ts := NewTuningStore(nil)
	ts.SetMonitorVolume(0)

	merged, err := ts.Apply(config.DefaultVitalsConfig())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if merged.MonitorVolume != 0 {
		t.Errorf("MonitorVolume: got %v, want 0", merged.MonitorVolume)
	}
}

// TestTuningStoreApplyInvalid 非法覆盖值返回错误
func TestTuningStoreApplyInvalid(t *testing.T) {
	ts := NewTuningStore(nil)
	criticalBPM := 10.0
	ts.Overrides().CriticalBPM = &criticalBPM

	if _, err := ts.Apply(config.DefaultVitalsConfig()); err == nil {
		t.Error("Expected error when critical BPM drops below normal BPM")
	}
}
