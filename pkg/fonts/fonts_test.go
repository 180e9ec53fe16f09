package fonts

import (
	"sync"
	"testing"
)

func TestRegular(t *testing.T) {
	f, err := Regular()
	if err != nil {
		t.Fatalf("Regular: %v", err)
	}
	if f == nil {
		t.Fatal("Regular returned nil font")
	}
	if len(TTF()) == 0 {
		t.Error("TTF() is empty")
	}
}

func TestFaceMetricsMeasure(t *testing.T) {
	m := NewFaceMetrics()

	w1, h1 := m.Measure("review", 20)
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("Measure = %vx%v, want positive", w1, h1)
	}

	w2, h2 := m.Measure("review", 40)
	if w2 <= w1 || h2 <= h1 {
		t.Errorf("Measure at 40pt = %vx%v, want larger than %vx%v", w2, h2, w1, h1)
	}

	wLong, _ := m.Measure("review and planning", 20)
	if wLong <= w1 {
		t.Errorf("longer label width %v, want > %v", wLong, w1)
	}
}

func TestFaceMetricsConcurrent(t *testing.T) {
	var zero FaceMetrics
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(size float64) {
			defer wg.Done()
			if w, _ := zero.Measure("concurrent", size); w <= 0 {
				t.Errorf("Measure(%v) width = %v", size, w)
			}
		}(float64(10 + i%3))
	}
	wg.Wait()
}

func TestFace(t *testing.T) {
	face, err := Face(12)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	defer face.Close()
	if face.Metrics().Height <= 0 {
		t.Error("face height should be positive")
	}
}
