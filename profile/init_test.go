package profile

import (
	"slices"
	"testing"
)

func TestConfig_Apply(t *testing.T) {
	c := Config(nil).Apply(WithMode("cpu"), WithPath("/tmp/p"), WithQuiet(true))

	mode, path, quiet := c()
	if mode != "cpu" || path != "/tmp/p" || !quiet {
		t.Errorf("got (%q, %q, %v), want (\"cpu\", \"/tmp/p\", true)", mode, path, quiet)
	}

	c = c.Apply(WithMode(""))
	if mode, path, _ := c(); mode != "" || path != "/tmp/p" {
		t.Errorf("WithMode should only replace the mode, got (%q, %q)", mode, path)
	}
}

func TestConfig_Start_NoModeIsNoop(t *testing.T) {
	for _, c := range []Config{nil, Config(nil).Apply(WithPath(t.TempDir()))} {
		stop := c.Start()
		if _, ok := stop.(ignore); !ok {
			t.Errorf("expected no-op handle, got %T", stop)
		}

		stop.Stop()
	}
}

func TestConfig_Start_UnknownMode(t *testing.T) {
	if slices.Contains(Modes(), "bogus") {
		t.Fatal("unexpected mode in list")
	}

	stop := Config(nil).Apply(WithMode("bogus")).Start()
	if _, ok := stop.(ignore); !ok {
		t.Errorf("expected no-op handle for unknown mode, got %T", stop)
	}
}
