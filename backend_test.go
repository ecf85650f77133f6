package spiral

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// mockBackend records the configs it was asked to build engines with.
type mockBackend struct {
	name string
	err  error

	mu   sync.Mutex
	cfgs []Config
	log  *slog.Logger
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) NewEngine(cfg Config) (Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfgs = append(m.cfgs, cfg)
	if m.err != nil {
		return nil, m.err
	}
	return nil, nil
}

func (m *mockBackend) SetLogger(l *slog.Logger) {
	m.mu.Lock()
	m.log = l
	m.mu.Unlock()
}

func (m *mockBackend) logger() *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log
}

func (m *mockBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cfgs)
}

// resetBackends clears the registry for the duration of a test.
func resetBackends(t *testing.T) {
	t.Helper()
	backendsMu.Lock()
	saved := backends
	backends = map[RenderMode]Backend{}
	backendsMu.Unlock()
	t.Cleanup(func() {
		backendsMu.Lock()
		backends = saved
		backendsMu.Unlock()
	})
}

func TestRegisterBackendRejects(t *testing.T) {
	resetBackends(t)
	if err := RegisterBackend(ModeCanvas, nil); err == nil {
		t.Error("RegisterBackend(nil) succeeded")
	}
	if err := RegisterBackend(ModeAuto, &mockBackend{name: "x"}); err == nil {
		t.Error("RegisterBackend(ModeAuto) succeeded")
	}
}

func TestRegisterBackendReplaces(t *testing.T) {
	resetBackends(t)
	a := &mockBackend{name: "a"}
	b := &mockBackend{name: "b"}
	_ = RegisterBackend(ModeCanvas, a)
	_ = RegisterBackend(ModeCanvas, b)
	got, ok := LookupBackend(ModeCanvas)
	if !ok || got != b {
		t.Errorf("LookupBackend = %v, %v; want b", got, ok)
	}
}

func TestNewEngineSelection(t *testing.T) {
	high := Capabilities{GPUSupported: true, Tier: TierHigh}
	tests := []struct {
		name    string
		mode    RenderMode
		caps    Capabilities
		gpuReg  bool
		wantGPU bool
	}{
		{"auto high desktop", ModeAuto, high, true, true},
		{"auto mobile", ModeAuto, Capabilities{GPUSupported: true, Tier: TierHigh, Mobile: true}, true, false},
		{"auto medium", ModeAuto, Capabilities{GPUSupported: true, Tier: TierMedium}, true, false},
		{"forced canvas", ModeCanvas, high, true, false},
		{"forced gpu low tier", ModeGPU, Capabilities{GPUSupported: true}, true, true},
		{"forced gpu unsupported", ModeGPU, Capabilities{}, true, false},
		{"gpu missing falls back", ModeGPU, high, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetBackends(t)
			canvas := &mockBackend{name: "canvas"}
			gpu := &mockBackend{name: "gpu"}
			_ = RegisterBackend(ModeCanvas, canvas)
			if tt.gpuReg {
				_ = RegisterBackend(ModeGPU, gpu)
			}
			if _, err := NewEngine(tt.mode, tt.caps, WithDebug(true)); err != nil {
				t.Fatalf("NewEngine: %v", err)
			}
			if got := gpu.calls() == 1; got != tt.wantGPU {
				t.Errorf("gpu used = %v, want %v", got, tt.wantGPU)
			}
			if got := canvas.calls() == 1; got == tt.wantGPU {
				t.Errorf("canvas used = %v, want %v", got, !tt.wantGPU)
			}
		})
	}
}

func TestNewEnginePassesConfig(t *testing.T) {
	resetBackends(t)
	b := &mockBackend{name: "canvas"}
	_ = RegisterBackend(ModeCanvas, b)
	if _, err := NewEngine(ModeCanvas, Capabilities{}, WithA(2), WithInitialScale(10)); err != nil {
		t.Fatal(err)
	}
	cfg := b.cfgs[0]
	if cfg.A != 2 || cfg.InitialScale != 10 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestNewEngineErrors(t *testing.T) {
	resetBackends(t)
	if _, err := NewEngine(ModeCanvas, Capabilities{}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}

	boom := errors.New("boom")
	_ = RegisterBackend(ModeCanvas, &mockBackend{name: "canvas", err: boom})
	if _, err := NewEngine(ModeCanvas, Capabilities{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}
