// Package utils 提供通用工具函数
package utils

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b，t 不做裁剪
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 将 v 限制在 [lo, hi] 范围内
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
