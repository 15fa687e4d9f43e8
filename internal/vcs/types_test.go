package vcs

import (
	"testing"
)

func TestBranchRef(t *testing.T) {
	if !DefaultBranch.IsDefault() {
		t.Fatal("DefaultBranch should be the default branch")
	}
	if got := DefaultBranch.Resolve("main"); got != "main" {
		t.Errorf("Resolve() = %q, want %q", got, "main")
	}
	if got := Branch("feature").Resolve("main"); got != "feature" {
		t.Errorf("Resolve() = %q, want %q", got, "feature")
	}
	if Branch("").IsDefault() != true {
		t.Error("Branch(\"\") should be the default branch")
	}
	if got := DefaultBranch.String(); got != "<default>" {
		t.Errorf("String() = %q", got)
	}
}

func TestCommitString(t *testing.T) {
	c := Commit{Revision: "0123456789abcdef", Message: "subject\n\nbody"}
	if got, want := c.String(), "0123456789 subject"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !c.Equal(Commit{Revision: "0123456789abcdef"}) {
		t.Error("commits with the same revision should be equal")
	}
}

func TestChangeTypeString(t *testing.T) {
	tests := map[ChangeType]string{
		Add:            "ADD",
		Modify:         "MODIFY",
		Delete:         "DELETE",
		ChangeType(42): "ChangeType(42)",
	}
	for ct, want := range tests {
		if got := ct.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", uint8(ct), got, want)
		}
	}
}
