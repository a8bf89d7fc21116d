//go:build !android

package utils

// PrepareTuningStorage 准备调校覆盖值的存储目录
// 桌面端和 iOS 由 gdata 自行创建目录，返回空路径表示使用 gdata 的默认位置
func PrepareTuningStorage() (string, error) {
	return "", nil
}
