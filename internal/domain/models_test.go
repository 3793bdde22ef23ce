package domain

import "testing"

func TestMessageStatus_Valid(t *testing.T) {
	for _, s := range []MessageStatus{StatusReceived, StatusSent, StatusDelivered, StatusRead} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []MessageStatus{"", "failed", "READ", "seen"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestBody_Constructors(t *testing.T) {
	b := TextBody("hello")
	if b.Kind != KindText || b.Text != "hello" || b.Media != nil {
		t.Fatalf("unexpected text body: %+v", b)
	}

	m := MediaBody(KindImage, MediaRef{ID: "media-1", Caption: "pic"})
	if m.Kind != KindImage || m.Media == nil || m.Media.ID != "media-1" {
		t.Fatalf("unexpected media body: %+v", m)
	}
	if m.Text != "" {
		t.Fatalf("media body must not carry text, got %q", m.Text)
	}
}

func TestMessage_Preview(t *testing.T) {
	cases := []struct {
		body Body
		want string
	}{
		{TextBody("hey there"), "hey there"},
		{MediaBody(KindImage, MediaRef{}), "[image]"},
		{MediaBody(KindVideo, MediaRef{}), "[video]"},
		{MediaBody(KindDocument, MediaRef{}), "[document]"},
		{MediaBody(KindAudio, MediaRef{}), "[audio]"},
		{Body{Kind: "sticker"}, ""},
	}
	for _, tc := range cases {
		m := Message{Body: tc.body}
		if got := m.Preview(); got != tc.want {
			t.Errorf("Preview(%q) = %q, want %q", tc.body.Kind, got, tc.want)
		}
	}
}

func TestTableNames(t *testing.T) {
	if got := (Message{}).TableName(); got != "messages" {
		t.Errorf("Message table = %q", got)
	}
	if got := (Contact{}).TableName(); got != "contacts" {
		t.Errorf("Contact table = %q", got)
	}
}
