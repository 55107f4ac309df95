package layout

import (
	"encoding/json"
	"os"

	"github.com/ByLCY/textstamp/overlay"
)

// DebugReport 汇总模板解析结果与引擎实际使用的参数。
type DebugReport struct {
	Layout *Result       `json:"layout"`
	Plan   *overlay.Plan `json:"plan,omitempty"`
}

// WriteDebugJSON 将解析结果与合成参数输出为 JSON，便于调试。
func WriteDebugJSON(res *Result, plan *overlay.Plan, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(DebugReport{Layout: res, Plan: plan}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
