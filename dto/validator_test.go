package dto

import (
	"testing"
	"time"
)

func TestCreateSessionRequestValidation(t *testing.T) {
	future := time.Now().Add(time.Hour)

	valid := CreateSessionRequest{
		Subject:         "Organic Chemistry",
		DurationMinutes: 45,
		ScheduledAt:     &future,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	missing := CreateSessionRequest{DurationMinutes: 45}
	if err := missing.Validate(); err == nil {
		t.Error("expected missing subject to fail validation")
	}

	zeroDuration := CreateSessionRequest{Subject: "Math", DurationMinutes: 0}
	if err := zeroDuration.Validate(); err == nil {
		t.Error("expected zero duration to fail validation")
	}

	negative := CreateSessionRequest{Subject: "Math", DurationMinutes: -10}
	if err := negative.Validate(); err == nil {
		t.Error("expected negative duration to fail validation")
	}
}

func TestRateSessionRequestValidation(t *testing.T) {
	cases := []struct {
		rating int
		ok     bool
	}{
		{-1, true}, // unrated sentinel
		{0, false}, // reserved
		{1, true},
		{5, true},
		{6, false},
		{-2, false},
	}

	for _, tc := range cases {
		err := RateSessionRequest{Rating: tc.rating}.Validate()
		if tc.ok && err != nil {
			t.Errorf("rating %d should be valid, got %v", tc.rating, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("rating %d should be rejected", tc.rating)
		}
	}
}

func TestUpdateSettingsRequestValidation(t *testing.T) {
	good := "21:45"
	if err := (UpdateSettingsRequest{ReminderTime: &good}).Validate(); err != nil {
		t.Errorf("expected %q accepted, got %v", good, err)
	}

	for _, bad := range []string{"25:00", "9:00", "12:60", "noon"} {
		v := bad
		if err := (UpdateSettingsRequest{ReminderTime: &v}).Validate(); err == nil {
			t.Errorf("expected %q rejected", bad)
		}
	}

	// Nil fields mean "leave alone" and always validate.
	if err := (UpdateSettingsRequest{}).Validate(); err != nil {
		t.Errorf("empty patch should validate, got %v", err)
	}
}

func TestUpdateSessionRequestPatch(t *testing.T) {
	subject := "Renamed"
	req := UpdateSessionRequest{Subject: &subject, ClearScheduledAt: true}

	patch := req.Patch()
	if patch.Subject == nil || *patch.Subject != "Renamed" {
		t.Errorf("subject not carried into patch: %+v", patch)
	}
	if !patch.ClearScheduledAt {
		t.Error("clear flag not carried into patch")
	}
	if patch.DurationMinutes != nil || patch.Notes != nil {
		t.Error("unset fields must stay nil in the patch")
	}
}
