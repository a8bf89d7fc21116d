//go:build !mobile

// stub.go - 桌面构建时的占位文件
//
// 移动端入口在 mobile.go 中，只在 -tags mobile 时编译；
// 这里保证 ./... 在桌面端也能正常构建。
package mobile

// Dummy 与 mobile.go 中的同名函数对应，桌面端为空实现
func Dummy() {}
