package rooms

import (
	"fmt"
	"testing"
)

func testRegistry() *Registry {
	n := 0
	return NewRegistry(func(code string) string {
		n++
		return fmt.Sprintf("%s-page-%d", code, n)
	})
}

func TestJoinCreatesRoomLazily(t *testing.T) {
	reg := testRegistry()

	if reg.Get("ABCDEF") != nil {
		t.Fatal("room must not exist before the first join")
	}

	pageID, members := reg.Join("ABCDEF", "sess-1")
	if pageID == "" {
		t.Fatal("new room must come with a fresh page")
	}
	if len(members) != 1 || members[0] != "sess-1" {
		t.Fatalf("unexpected membership snapshot: %v", members)
	}

	// a second joiner lands on the same page
	pageID2, members := reg.Join("ABCDEF", "sess-2")
	if pageID2 != pageID {
		t.Fatalf("expected same active page %q, got %q", pageID, pageID2)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}
}

func TestLeave(t *testing.T) {
	reg := testRegistry()
	reg.Join("ABCDEF", "sess-1")
	reg.Join("ABCDEF", "sess-2")

	reg.Leave("sess-1")
	members := reg.MembersOf("ABCDEF")
	if len(members) != 1 || members[0] != "sess-2" {
		t.Fatalf("expected only sess-2 left, got %v", members)
	}

	// leaving twice, or never having joined, is a no-op
	reg.Leave("sess-1")
	reg.Leave("never-joined")
	if got := len(reg.MembersOf("ABCDEF")); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}
}

func TestRoomSurvivesEmptyMembership(t *testing.T) {
	reg := testRegistry()
	pageID, _ := reg.Join("ABCDEF", "sess-1")
	reg.Leave("sess-1")

	// the room keeps its page so a returning client finds its drawing
	pageID2, _ := reg.Join("ABCDEF", "sess-2")
	if pageID2 != pageID {
		t.Fatalf("expected the room to keep page %q, got %q", pageID, pageID2)
	}
}

func TestSetActivePage(t *testing.T) {
	reg := testRegistry()
	reg.Join("ABCDEF", "sess-1")

	reg.SetActivePage("ABCDEF", "new-page")
	pageID, _ := reg.Join("ABCDEF", "sess-2")
	if pageID != "new-page" {
		t.Fatalf("later joiners must see the new page, got %q", pageID)
	}

	// unknown room is a no-op
	reg.SetActivePage("ZZZZZZ", "whatever")
	if reg.Get("ZZZZZZ") != nil {
		t.Fatal("SetActivePage must not create rooms")
	}
}

func TestMembersOfUnknownRoom(t *testing.T) {
	reg := testRegistry()
	if members := reg.MembersOf("ABCDEF"); len(members) != 0 {
		t.Fatalf("expected no members, got %v", members)
	}
}
