package checkpoint

import "testing"

func TestMakeCheckpointsEndpoints(t *testing.T) {
	cp := MakeCheckpointsLog(100, 5)
	if cp[0] != 0 {
		t.Fatalf("expected cp[0]=0, got %d", cp[0])
	}
	if cp[len(cp)-1] != 100 {
		t.Fatalf("expected last checkpoint = horizon (100), got %d", cp[len(cp)-1])
	}
}

func TestMakeCheckpointsStrictlyMonotone(t *testing.T) {
	cp := MakeCheckpointsLog(2000000, 96)
	for i := 1; i < len(cp); i++ {
		if cp[i] <= cp[i-1] {
			t.Fatalf("checkpoints not strictly increasing at index %d: %d <= %d", i, cp[i], cp[i-1])
		}
	}
	if len(cp) > 96 {
		t.Fatalf("expected deduplicated length <= K=96, got %d", len(cp))
	}
}

func TestMakeCheckpointsSmallHorizon(t *testing.T) {
	cp := MakeCheckpointsLog(100, 5)
	if len(cp) == 0 || cp[0] != 0 {
		t.Fatalf("checkpoints must start at 0")
	}
	for i := 1; i < len(cp); i++ {
		if cp[i] <= cp[i-1] {
			t.Fatalf("checkpoints not strictly increasing at %d", i)
		}
	}
}

func TestMakeCheckpointsDegenerateHorizon(t *testing.T) {
	cp := MakeCheckpointsLog(1, 5)
	if cp[0] != 0 {
		t.Fatalf("expected cp[0]=0, got %d", cp[0])
	}
	if cp[len(cp)-1] != 1 {
		t.Fatalf("expected last checkpoint = horizon (1), got %d", cp[len(cp)-1])
	}
}

func TestMakeCheckpointsKClampedToMinimum(t *testing.T) {
	cp := MakeCheckpointsLog(50, 0)
	if len(cp) < 2 {
		t.Fatalf("expected at least [0, horizon], got %v", cp)
	}
	if cp[0] != 0 || cp[len(cp)-1] != 50 {
		t.Fatalf("unexpected endpoints: %v", cp)
	}
}
