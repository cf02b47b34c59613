package models

import "testing"

func TestConnectionID_Unordered(t *testing.T) {
	if ConnectionID("alice", "bob") != ConnectionID("bob", "alice") {
		t.Errorf("ConnectionID should not depend on argument order")
	}
	if got := ConnectionID("b", "a"); got != "a_b" {
		t.Errorf("ConnectionID(b, a) = %q, want %q", got, "a_b")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ConnectionStatus
		want     bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusIgnored, true},
		{StatusPending, StatusPending, false},
		{StatusAccepted, StatusPending, false},
		{StatusAccepted, StatusIgnored, false},
		{StatusIgnored, StatusPending, false},
		{StatusIgnored, StatusAccepted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConnection_Other(t *testing.T) {
	c := Connection{RequesterID: "a", ReceiverID: "b"}
	if c.Other("a") != "b" || c.Other("b") != "a" {
		t.Errorf("Other returned the wrong participant")
	}
	if !c.Involves("a") || c.Involves("z") {
		t.Errorf("Involves mismatch")
	}
}

func TestProfilePatch_FieldsAndApply(t *testing.T) {
	loc := "Nairobi"
	crops := []string{"Maize", "Beans"}
	patch := ProfilePatch{Location: &loc, CropsGrown: &crops}

	fields := patch.Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() returned %d entries, want 2", len(fields))
	}
	if fields["location"] != "Nairobi" {
		t.Errorf("location = %v, want Nairobi", fields["location"])
	}

	u := patch.Apply(User{ID: "u1", Name: "Wanjiru", Location: "Old"})
	if u.Location != "Nairobi" || len(u.CropsGrown) != 2 || u.Name != "Wanjiru" {
		t.Errorf("Apply produced %+v", u)
	}

	crops[0] = "Changed"
	if u.CropsGrown[0] != "Maize" {
		t.Errorf("Apply should copy slices, got %v", u.CropsGrown)
	}

	if !(ProfilePatch{}).IsEmpty() {
		t.Errorf("zero patch should be empty")
	}
}

func TestImagePatch(t *testing.T) {
	p := ImagePatch(CoverPhotoField, "data:image/png;base64,AA==")
	if p.CoverPhoto == nil || p.ProfilePhoto != nil {
		t.Errorf("ImagePatch(cover) set the wrong field: %+v", p)
	}
	p = ImagePatch(ProfilePhotoField, "x")
	if p.ProfilePhoto == nil || *p.ProfilePhoto != "x" {
		t.Errorf("ImagePatch(profile) = %+v", p)
	}
}

func TestNotificationKind_Valid(t *testing.T) {
	for _, k := range NotificationKinds {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if NotificationKind("poke").Valid() {
		t.Errorf("unknown kind reported valid")
	}
}
