package generation

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDefaultRequirements(t *testing.T) {
	reqs := DefaultRequirements()

	// 所有开关默认开启
	v := reflect.ValueOf(reqs)
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).Bool() {
			t.Errorf("开关 %s 默认值 = false, 期望 true", v.Type().Field(i).Name)
		}
	}
	if v.NumField() != 14 {
		t.Errorf("开关数 = %d, 期望 14", v.NumField())
	}
}

func TestRequirements_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(DefaultRequirements())
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	// 字段名为蛇形命名
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	for _, key := range []string{"enforce_minimum_coverage", "enforce_keyholder_coverage", "enforce_opening_hours"} {
		if _, ok := m[key]; !ok {
			t.Errorf("缺少字段 %s", key)
		}
	}

	// 部分传入时未提及的开关为关
	var reqs Requirements
	if err := json.Unmarshal([]byte(`{"enforce_break_rules":true}`), &reqs); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if !reqs.EnforceBreakRules || reqs.EnforceMaxHours {
		t.Error("部分反序列化结果不符")
	}
}

func TestDetailedOptions_Normalize(t *testing.T) {
	t.Run("零值替换为默认", func(t *testing.T) {
		var opts DetailedOptions
		opts.Normalize()

		if opts.Priority.Fairness != 50 {
			t.Errorf("Fairness = %d, 期望 50", opts.Priority.Fairness)
		}
		if opts.AIModelParams.Temperature != 0.7 {
			t.Errorf("Temperature = %.2f, 期望 0.7", opts.AIModelParams.Temperature)
		}
	})

	t.Run("越界值截断", func(t *testing.T) {
		opts := DetailedOptions{
			Priority:      PriorityOptions{EmployeeSatisfaction: 150, Fairness: -10, Consistency: 80, WorkloadBalance: 50},
			AIModelParams: AIModelParams{Temperature: 1.5, Creativity: -0.2},
		}
		opts.Normalize()

		if opts.Priority.EmployeeSatisfaction != 100 || opts.Priority.Fairness != 0 {
			t.Errorf("权重截断结果 = %+v", opts.Priority)
		}
		if opts.Priority.Consistency != 80 {
			t.Errorf("范围内的值不应变化: %d", opts.Priority.Consistency)
		}
		if opts.AIModelParams.Temperature != 1 || opts.AIModelParams.Creativity != 0 {
			t.Errorf("模型参数截断结果 = %+v", opts.AIModelParams)
		}
	})

	t.Run("显式设置的值不被默认覆盖", func(t *testing.T) {
		opts := DetailedOptions{
			Priority: PriorityOptions{EmployeeSatisfaction: 10, Fairness: 20, Consistency: 30, WorkloadBalance: 40},
		}
		opts.Normalize()

		if opts.Priority.EmployeeSatisfaction != 10 {
			t.Errorf("显式权重被覆盖: %d", opts.Priority.EmployeeSatisfaction)
		}
		// 未设置的模型参数仍取默认
		if opts.AIModelParams.Creativity != 0.5 {
			t.Errorf("Creativity = %.2f, 期望 0.5", opts.AIModelParams.Creativity)
		}
	})
}

func TestDefaultDetailedOptions(t *testing.T) {
	opts := DefaultDetailedOptions()

	if !opts.ConstraintOverrides.StrictKeyholder || !opts.ConstraintOverrides.MinimumRestPeriods {
		t.Error("钥匙与休息约束默认开启")
	}
	if opts.ConstraintOverrides.AllowOvertime {
		t.Error("加班默认关闭")
	}
	if !opts.EmployeeOptions.RespectPreferenceWeights {
		t.Error("偏好权重默认开启")
	}
}
