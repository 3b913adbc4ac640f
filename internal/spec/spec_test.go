package spec

import "testing"

func TestCommandLookup(t *testing.T) {
	s := Spec{Commands: []CommandSpec{
		{Name: "records get <module> <id>..."},
		{Name: "records getter"},
		{Name: "spec"},
	}}

	if c, ok := s.Command("spec"); !ok || c.Name != "spec" {
		t.Fatalf("spec lookup = %+v, %v", c, ok)
	}
	if c, ok := s.Command("records get"); !ok || c.Name != "records get <module> <id>..." {
		t.Fatalf("records get lookup = %+v, %v", c, ok)
	}
	if _, ok := s.Command("records"); ok {
		t.Fatal("group name should not match a subcommand")
	}
	if _, ok := s.Command("records ge"); ok {
		t.Fatal("prefix without word boundary should not match")
	}
}
