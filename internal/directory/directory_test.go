package directory

import (
	"errors"
	"fmt"
	"testing"

	"chatd/internal/protocol"
)

func TestRegisterDefaultsAndDuplicate(t *testing.T) {
	d := New()

	if err := d.Register("alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := d.Register("alice"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	profile, ok := d.Profile("alice")
	if !ok {
		t.Fatal("profile not found after register")
	}
	want := protocol.Profile{Nickname: "alice", Avatar: "👤", Status: "online"}
	if profile != want {
		t.Fatalf("unexpected default profile: %+v", profile)
	}
}

func TestContactsAreAnOrderedSet(t *testing.T) {
	d := New()
	for _, name := range []string{"alice", "bob", "carol"} {
		if err := d.Register(name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	if err := d.AddContact("alice", "carol"); err != nil {
		t.Fatalf("add carol: %v", err)
	}
	if err := d.AddContact("alice", "bob"); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	if err := d.AddContact("alice", "bob"); !errors.Is(err, ErrAlreadyContact) {
		t.Fatalf("expected ErrAlreadyContact, got %v", err)
	}
	if err := d.AddContact("alice", "dave"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	contacts := d.Contacts("alice")
	if len(contacts) != 2 || contacts[0].Username != "carol" || contacts[1].Username != "bob" {
		t.Fatalf("unexpected contact order: %+v", contacts)
	}

	if err := d.RemoveContact("alice", "carol"); err != nil {
		t.Fatalf("remove carol: %v", err)
	}
	if err := d.RemoveContact("alice", "carol"); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	d := New()
	d.Register("Alice")
	d.Register("bob")
	nickname := "alley cat"
	d.UpdateProfile("bob", protocol.ProfilePatch{Nickname: &nickname})

	testCases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "matches_username_and_nickname", query: "al", want: []string{"Alice", "bob"}},
		{name: "empty_matches_all", query: "", want: []string{"Alice", "bob"}},
		{name: "case_insensitive", query: "ALICE", want: []string{"Alice"}},
		{name: "no_match", query: "zzz", want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results := d.Search(tc.query)
			if len(results) != len(tc.want) {
				t.Fatalf("expected %d results, got %+v", len(tc.want), results)
			}
			for i, want := range tc.want {
				if results[i].Username != want {
					t.Fatalf("result %d: expected %q, got %q", i, want, results[i].Username)
				}
			}
		})
	}
}

func TestGroupIDsAreAssignedInCreationOrder(t *testing.T) {
	d := New()
	d.Register("alice")

	for i := 1; i <= 3; i++ {
		id := d.CreateGroup("devs", "alice")
		if want := fmt.Sprintf("group_%d", i); id != want {
			t.Fatalf("expected %s, got %s", want, id)
		}
	}
}

func TestJoinAndLeaveGroup(t *testing.T) {
	d := New()
	d.Register("alice")
	d.Register("bob")
	id := d.CreateGroup("devs", "alice")

	name, others, err := d.JoinGroup(id, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if name != "devs" {
		t.Fatalf("unexpected group name: %s", name)
	}
	if len(others) != 1 || others[0] != "alice" {
		t.Fatalf("unexpected announcement targets: %+v", others)
	}

	if _, _, err := d.JoinGroup(id, "bob"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if _, _, err := d.JoinGroup("group_99", "bob"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	_, remaining, err := d.LeaveGroup(id, "alice")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(remaining) != 1 || remaining[0] != "bob" {
		t.Fatalf("unexpected remaining members: %+v", remaining)
	}

	// The group survives its last member leaving.
	if _, _, err := d.LeaveGroup(id, "bob"); err != nil {
		t.Fatalf("last member leave: %v", err)
	}
	groups := d.GroupsOf("bob")
	if len(groups) != 0 {
		t.Fatalf("expected no groups for bob, got %+v", groups)
	}
	if _, groupCount := d.Counts(); groupCount != 1 {
		t.Fatalf("expected empty group to survive, counts: %d", groupCount)
	}
}

func TestAddFriendToGroupPreconditions(t *testing.T) {
	d := New()
	d.Register("alice")
	d.Register("bob")
	d.Register("carol")
	id := d.CreateGroup("devs", "alice")

	testCases := []struct {
		name    string
		groupID string
		caller  string
		friend  string
		wantErr error
	}{
		{name: "unknown_group", groupID: "group_9", caller: "alice", friend: "bob", wantErr: ErrGroupNotFound},
		{name: "caller_not_member", groupID: id, caller: "carol", friend: "bob", wantErr: ErrNotMember},
		{name: "friend_unknown", groupID: id, caller: "alice", friend: "dave", wantErr: ErrUserNotFound},
		{name: "friend_not_contact", groupID: id, caller: "alice", friend: "bob", wantErr: ErrNotContact},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := d.AddFriendToGroup(tc.groupID, tc.caller, tc.friend)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if err := d.AddContact("alice", "bob"); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	name, members, count, err := d.AddFriendToGroup(id, "alice", "bob")
	if err != nil {
		t.Fatalf("add friend: %v", err)
	}
	if name != "devs" || count != 2 || len(members) != 2 {
		t.Fatalf("unexpected result: name=%s count=%d members=%+v", name, count, members)
	}

	if _, _, _, err := d.AddFriendToGroup(id, "alice", "bob"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestRenameRewritesEveryReference(t *testing.T) {
	d := New()
	d.Register("alice")
	d.Register("bob")
	d.AddContact("bob", "alice")
	d.AddContact("alice", "bob")
	id := d.CreateGroup("devs", "alice")
	d.JoinGroup(id, "bob")

	profile, targets, err := d.Rename("alice", "alicia")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if profile.Nickname != "alice" {
		t.Fatalf("nickname should be untouched, got %q", profile.Nickname)
	}

	// bob holds alicia as a contact and shares a group; alicia is her own
	// group co-member.
	if !containsString(targets, "bob") || !containsString(targets, "alicia") {
		t.Fatalf("unexpected notification targets: %+v", targets)
	}

	if d.Exists("alice") {
		t.Fatal("old username still registered")
	}
	contacts := d.Contacts("bob")
	if len(contacts) != 1 || contacts[0].Username != "alicia" {
		t.Fatalf("bob's contacts not rewritten: %+v", contacts)
	}
	groups := d.GroupsOf("alicia")
	if len(groups) != 1 || groups[0].GroupID != id {
		t.Fatalf("group membership not rewritten: %+v", groups)
	}

	if _, _, err := d.Rename("bob", "alicia"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// Renaming back restores everything.
	if _, _, err := d.Rename("alicia", "alice"); err != nil {
		t.Fatalf("rename back: %v", err)
	}
	contacts = d.Contacts("bob")
	if len(contacts) != 1 || contacts[0].Username != "alice" {
		t.Fatalf("round-trip rename did not restore contacts: %+v", contacts)
	}
}

func TestNotificationSetSpansContactsAndGroups(t *testing.T) {
	d := New()
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		d.Register(name)
	}
	d.AddContact("bob", "alice")
	id := d.CreateGroup("devs", "alice")
	d.JoinGroup(id, "carol")

	targets := d.NotificationSet("alice")
	for _, want := range []string{"bob", "alice", "carol"} {
		if !containsString(targets, want) {
			t.Fatalf("expected %s in notification set %+v", want, targets)
		}
	}
	if containsString(targets, "dave") {
		t.Fatalf("dave should not be notified: %+v", targets)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
