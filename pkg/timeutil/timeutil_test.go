package timeutil

import "testing"

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "零点", input: "00:00", expected: 0},
		{name: "整点", input: "09:00", expected: 540},
		{name: "带分钟", input: "14:30", expected: 870},
		{name: "一天的最后一分钟", input: "23:59", expected: 1439},
		{name: "小时越界", input: "24:00", wantErr: true},
		{name: "分钟越界", input: "12:60", wantErr: true},
		{name: "缺少冒号", input: "1230", wantErr: true},
		{name: "多段冒号", input: "12:30:00", wantErr: true},
		{name: "非数字", input: "ab:cd", wantErr: true},
		{name: "空字符串", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToMinutes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ToMinutes(%q) 应返回错误", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToMinutes(%q) 意外错误: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ToMinutes(%q) = %d, 期望 %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToText(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "零点", input: 0, expected: "00:00"},
		{name: "上午", input: 540, expected: "09:00"},
		{name: "补零", input: 65, expected: "01:05"},
		{name: "超出一天取模", input: 1500, expected: "01:00"},
		{name: "负值回绕", input: -60, expected: "23:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ToText(tt.input); result != tt.expected {
				t.Errorf("ToText(%d) = %q, 期望 %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// 合法时间文本经分钟数往返后不变
	for _, text := range []string{"00:00", "06:30", "12:00", "18:45", "23:59"} {
		m, err := ToMinutes(text)
		if err != nil {
			t.Fatalf("ToMinutes(%q) 意外错误: %v", text, err)
		}
		if got := ToText(m); got != text {
			t.Errorf("往返失败: %q -> %d -> %q", text, m, got)
		}
	}
}

func TestWrapDuration(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		end      int
		expected int
	}{
		{name: "同日班次", start: 540, end: 1020, expected: 480},
		{name: "跨午夜班次", start: 1320, end: 360, expected: 480}, // 22:00-06:00
		{name: "零时长", start: 600, end: 600, expected: 0},
		{name: "接近整天", start: 60, end: 0, expected: 1380},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := WrapDuration(tt.start, tt.end); result != tt.expected {
				t.Errorf("WrapDuration(%d, %d) = %d, 期望 %d", tt.start, tt.end, result, tt.expected)
			}
		})
	}
}
