package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findFamily は名前が一致するメトリクスファミリーを返す。
func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// labelValue は指定ラベルの値を返す。
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_CountsByRouteAndStatus はルート・ステータス別に件数が記録されることを検証する。
func TestRecordHTTPRequest_CountsByRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/Student/FindStudent/{id}", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/Student/FindStudent/{id}", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/Student/FindStudent/{id}", 400, time.Millisecond)

	mf := findFamily(t, reg, "schoolrecords_http_requests_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		val := m.GetCounter().GetValue()
		switch labelValue(m, "status_code") {
		case "200":
			if val != 2 {
				t.Errorf("requests{status_code=200} = %v, want 2", val)
			}
		case "400":
			if val != 1 {
				t.Errorf("requests{status_code=400} = %v, want 1", val)
			}
		default:
			t.Errorf("unexpected status label: %s", labelValue(m, "status_code"))
		}
	}

	dur := findFamily(t, reg, "schoolrecords_http_request_duration_seconds")
	if got := dur.GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("duration sample count = %d, want 3", got)
	}
}

// TestRecordValidationRejection_IncrementsCounterWithLabels はエンティティ・操作別に拒否数が記録されることを検証する。
func TestRecordValidationRejection_IncrementsCounterWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordValidationRejection("student", "create")
	c.RecordValidationRejection("student", "create")
	c.RecordValidationRejection("teacher", "update")

	mf := findFamily(t, reg, "schoolrecords_validation_rejections_total")
	for _, m := range mf.GetMetric() {
		key := labelValue(m, "entity") + "/" + labelValue(m, "operation")
		val := m.GetCounter().GetValue()
		switch key {
		case "student/create":
			if val != 2 {
				t.Errorf("%s = %v, want 2", key, val)
			}
		case "teacher/update":
			if val != 1 {
				t.Errorf("%s = %v, want 1", key, val)
			}
		default:
			t.Errorf("unexpected labels: %s", key)
		}
	}
}

// TestRecordWrite_IncrementsCounter は書き込み成功数が記録されることを検証する。
func TestRecordWrite_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWrite("course", "delete")

	mf := findFamily(t, reg, "schoolrecords_writes_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 1 {
		t.Errorf("writes_total = %v, want 1", val)
	}
}

// TestObserveStoreLatency_ObservesHistogram はストアレイテンシのヒストグラムに値が記録されることを検証する。
func TestObserveStoreLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveStoreLatency("teacher", "list", 3*time.Millisecond)
	c.ObserveStoreLatency("teacher", "list", 7*time.Millisecond)

	mf := findFamily(t, reg, "schoolrecords_store_latency_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if h.GetSampleSum() < 0.009 || h.GetSampleSum() > 0.011 {
		t.Errorf("sample sum = %v, want ~0.01", h.GetSampleSum())
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorとNopがインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
	var _ MetricsCollector = Nop{}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordWrite("student", "create")
	c2.RecordWrite("student", "create")
	c2.RecordWrite("student", "create")

	val1 := findFamily(t, reg1, "schoolrecords_writes_total").GetMetric()[0].GetCounter().GetValue()
	val2 := findFamily(t, reg2, "schoolrecords_writes_total").GetMetric()[0].GetCounter().GetValue()

	if val1 != 1 {
		t.Errorf("reg1 writes = %v, want 1", val1)
	}
	if val2 != 2 {
		t.Errorf("reg2 writes = %v, want 2", val2)
	}
}
