package layout

// BuildOptions 配置模板解析阶段，例如资源路径的根目录。
type BuildOptions struct {
	BaseDir string
	// DropMissing 为 true 时，数据中不存在的 ${path} 替换为空串而不是保留占位符。
	DropMissing bool
	Debug       DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawLines bool // 在调试 JSON 中输出 debug.rawLines 影子字段
}
