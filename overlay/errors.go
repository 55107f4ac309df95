package overlay

import "errors"

// 引擎对外只暴露以下三类错误，调用方使用 errors.Is 判断。
var (
	// ErrResourceNotFound 源图像无法打开或解码。
	ErrResourceNotFound = errors.New("找不到源图像")
	// ErrFontLoad 指定了自定义字体，且自定义字体与全部后备字体都无法加载。
	ErrFontLoad = errors.New("字体加载失败")
	// ErrRender 测量、绘制或编码过程中的其他任何失败，不再细分原因。
	ErrRender = errors.New("图像处理出错")
)
