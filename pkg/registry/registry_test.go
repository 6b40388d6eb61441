package registry

import (
	"encoding/json"
	"fmt"
	"testing"
)

// TestStrictUnmarshal 验证严格解码逻辑。
func TestStrictUnmarshal(t *testing.T) {
	type opt struct {
		A int `json:"a"`
	}
	var o opt
	if err := strictUnmarshal(nil, &o); err != nil || o.A != 0 {
		t.Fatalf("nil 输入失败: %v", err)
	}
	if err := strictUnmarshal(json.RawMessage(`{"a":1}`), &o); err != nil || o.A != 1 {
		t.Fatalf("合法 JSON 解析失败: %v", err)
	}
	if err := strictUnmarshal(json.RawMessage(`{"a":1,"b":2}`), &o); err == nil {
		t.Fatalf("未知字段应报错")
	}
}

// TestWriterFactory 遍历注册表入口。
func TestWriterFactory(t *testing.T) {
	tmp := t.TempDir()
	raw := json.RawMessage([]byte(fmt.Sprintf(`{"output_dir":%q}`, tmp)))
	if _, err := Writer["fs"](raw); err != nil {
		t.Fatalf("writer: %v", err)
	}
	bad := json.RawMessage([]byte(fmt.Sprintf(`{"output_dir":%q,"x":1}`, tmp)))
	if _, err := Writer["fs"](bad); err == nil {
		t.Fatalf("writer 未对未知字段报错")
	}
	if _, err := Writer["fs"](json.RawMessage(`{}`)); err == nil {
		t.Fatalf("缺少 output_dir 应报错")
	}
}
