package directory

import (
	"testing"

	"github.com/teamcomm/relaybot/internal/config"
)

func testRoles() map[string]config.RoleConfig {
	return map[string]config.RoleConfig{
		"writer":       {DisplayName: "Writer Team", Members: []int64{1, 2}},
		"mcqs_team":    {DisplayName: "MCQs Team", Members: []int64{3}},
		"checker_team": {DisplayName: "Editor Team", Members: []int64{4, 2}},
		"tara_team":    {DisplayName: "Tara Team", Members: []int64{5}},
	}
}

func TestDirectory_RolesOf(t *testing.T) {
	d := New(testRoles())

	if roles := d.RolesOf(1); len(roles) != 1 || roles[0] != "writer" {
		t.Fatalf("RolesOf(1) = %v, want [writer]", roles)
	}

	roles := d.RolesOf(2)
	if len(roles) != 2 || roles[0] != "checker_team" || roles[1] != "writer" {
		t.Fatalf("RolesOf(2) = %v, want [checker_team writer]", roles)
	}

	if roles := d.RolesOf(999); len(roles) != 0 {
		t.Fatalf("RolesOf(999) = %v, want empty", roles)
	}
}

func TestDirectory_MembersOf(t *testing.T) {
	d := New(testRoles())

	members := d.MembersOf("writer")
	if len(members) != 2 || members[0] != 1 || members[1] != 2 {
		t.Fatalf("MembersOf(writer) = %v, want [1 2]", members)
	}

	if members := d.MembersOf("nonexistent"); len(members) != 0 {
		t.Fatalf("MembersOf(nonexistent) = %v, want empty", members)
	}
}

func TestDirectory_HasRole(t *testing.T) {
	d := New(testRoles())

	if !d.HasRole(5, "tara_team") {
		t.Fatal("HasRole(5, tara_team) = false, want true")
	}
	if d.HasRole(1, "tara_team") {
		t.Fatal("HasRole(1, tara_team) = true, want false")
	}
	if d.HasRole(1, "nonexistent") {
		t.Fatal("HasRole(1, nonexistent) = true, want false")
	}
}

func TestDirectory_DisplayName(t *testing.T) {
	d := New(testRoles())

	if name := d.DisplayName("checker_team"); name != "Editor Team" {
		t.Fatalf("DisplayName(checker_team) = %q, want %q", name, "Editor Team")
	}
	if name := d.DisplayName("mystery"); name != "mystery" {
		t.Fatalf("DisplayName(mystery) = %q, want fallback to key", name)
	}
}

func TestDirectory_AllMembers(t *testing.T) {
	d := New(testRoles())

	all := d.AllMembers()
	want := []int64{1, 2, 3, 4, 5}
	if len(all) != len(want) {
		t.Fatalf("AllMembers() = %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("AllMembers() = %v, want %v", all, want)
		}
	}
}

func TestDirectory_DefaultConfigMultiRole(t *testing.T) {
	d := New(config.DefaultRoles())

	// 1414370194 appears in both writer and checker_team in the default
	// configuration; the directory must tolerate that.
	roles := d.RolesOf(1414370194)
	if len(roles) != 2 {
		t.Fatalf("RolesOf(1414370194) = %v, want two roles", roles)
	}
}
