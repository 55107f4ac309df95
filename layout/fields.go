package layout

import (
	"github.com/ByLCY/textstamp/binding"
	"github.com/ByLCY/textstamp/dsl"
)

// Fields 返回 overlay 文本中引用的数据路径，按出现顺序去重，供表单生成输入框。
func Fields(doc *dsl.Document) []string {
	section := firstOverlay(doc)
	if section == nil || section.Block == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, st := range section.Block.Statements {
		if st.Command == nil {
			continue
		}
		for _, line := range st.Command.Block.Texts() {
			for _, name := range binding.Placeholders(line) {
				if seen[name] {
					continue
				}
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
