package overlay

import "image"

// Position 计算块包围盒左上角在图像中的坐标：
//
//	x = (W - w) / 2 + dx
//	y = (H - h) / 2 + dy - bias
//
// 不做边界裁剪，结果可以为负或超出图像，文本会部分或全部落在画布之外。
func Position(canvas, block image.Point, off Offset, bias int) image.Point {
	return image.Point{
		X: (canvas.X-block.X)/2 + off.DX,
		Y: (canvas.Y-block.Y)/2 + off.DY - bias,
	}
}
