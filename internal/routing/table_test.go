package routing

import (
	"testing"

	"github.com/teamcomm/relaybot/internal/config"
)

func TestTable_TargetsFor(t *testing.T) {
	table := New(config.DefaultTargets(), config.DefaultTriggers())

	targets := table.TargetsFor("writer")
	want := []string{"mcqs_team", "checker_team", "tara_team"}
	if len(targets) != len(want) {
		t.Fatalf("TargetsFor(writer) = %v, want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("TargetsFor(writer) = %v, want %v", targets, want)
		}
	}

	if targets := table.TargetsFor("unknown_role"); len(targets) != 0 {
		t.Fatalf("TargetsFor(unknown_role) = %v, want empty", targets)
	}
}

func TestTable_TriggerTargets(t *testing.T) {
	table := New(config.DefaultTargets(), config.DefaultTriggers())

	targets, ok := table.TriggerTargets("-mcq")
	if !ok {
		t.Fatal("TriggerTargets(-mcq) not recognized")
	}
	if len(targets) != 1 || targets[0] != "mcqs_team" {
		t.Fatalf("TriggerTargets(-mcq) = %v, want [mcqs_team]", targets)
	}

	// -e and -c both point at the editor team.
	for _, prefix := range []string{"-e", "-c"} {
		targets, ok := table.TriggerTargets(prefix)
		if !ok || len(targets) != 1 || targets[0] != "checker_team" {
			t.Fatalf("TriggerTargets(%s) = %v, %v, want [checker_team]", prefix, targets, ok)
		}
	}

	if _, ok := table.TriggerTargets("-zzz"); ok {
		t.Fatal("TriggerTargets(-zzz) recognized, want fallback")
	}
}

func TestTable_CopiesAreIsolated(t *testing.T) {
	table := New(config.DefaultTargets(), config.DefaultTriggers())

	targets := table.TargetsFor("writer")
	targets[0] = "mutated"

	again := table.TargetsFor("writer")
	if again[0] != "mcqs_team" {
		t.Fatalf("TargetsFor returned shared slice, got %v", again)
	}
}
