//go:build android

package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// androidDataRoot 应用私有数据根目录
const androidDataRoot = "/data/data"

// PrepareTuningStorage 准备调校覆盖值的存储目录
//
// gdata 在 Android 上写入 /data/data/{package}/saves，但不会预先创建该目录。
// 必须在 gdata.Open 之前调用。
//
// 返回：
//   - string: 已确认可写的目录
//   - error: 无法识别包名、创建目录失败或目录不可写
func PrepareTuningStorage() (string, error) {
	pkg, err := androidPackageName()
	if err != nil {
		return "", fmt.Errorf("failed to detect Android package: %w", err)
	}

	dir := filepath.Join(androidDataRoot, pkg, "saves")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return "", fmt.Errorf("storage directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return dir, nil
}

// androidPackageName 进程的第一个命令行参数即应用包名
func androidPackageName() (string, error) {
	cmdline, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(cmdline, 0); i >= 0 {
		cmdline = cmdline[:i]
	}
	name := string(bytes.TrimSpace(cmdline))
	if name == "" {
		return "", fmt.Errorf("empty /proc/self/cmdline")
	}
	return name, nil
}
