package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

func newChatService(t *testing.T, ai *fakeAI) ChatService {
	t.Helper()
	env := newEnv(t)
	return NewChatService(env.docs, repos.NewChatMessageRepo(env.gdb, env.log), ai, env.log)
}

func TestSendMessageStoresBothTurns(t *testing.T) {
	svc := newChatService(t, &fakeAI{textReply: "Expect light rain tomorrow."})
	ctx := context.Background()

	reply, err := svc.SendMessage(ctx, ChatInput{UserID: "user-1", Message: "Will it rain on my wheat field?"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if reply.GeneratedBy != GeneratedByAI {
		t.Fatalf("generated_by = %q, want AI", reply.GeneratedBy)
	}

	history, err := svc.History(ctx, "user-1", reply.SessionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	if history[0].Sender != "user" || history[1].Sender != "assistant" {
		t.Fatalf("unexpected turn order: %s then %s", history[0].Sender, history[1].Sender)
	}
	if history[1].Message != "Expect light rain tomorrow." {
		t.Fatalf("unexpected reply %q", history[1].Message)
	}
	if len(history[0].Timestamp) != len(history[1].Timestamp) {
		t.Fatalf("stamp widths differ: %q vs %q", history[0].Timestamp, history[1].Timestamp)
	}
	if history[0].Timestamp >= history[1].Timestamp {
		t.Fatalf("user turn %q should sort before assistant turn %q", history[0].Timestamp, history[1].Timestamp)
	}
}

func TestChatTimestampOrderingSameSecond(t *testing.T) {
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	// Chronological stamps whose fractional parts would render at
	// different widths under a trailing-zero-trimming layout.
	stamps := []time.Time{
		base.Add(120 * time.Millisecond),
		base.Add(121 * time.Millisecond),
		base.Add(121*time.Millisecond + time.Microsecond),
		base.Add(5 * time.Second),
	}
	var prev string
	for _, ts := range stamps {
		got := ts.Format(types.ChatTimestampLayout)
		if prev != "" {
			if len(got) != len(prev) {
				t.Fatalf("stamp widths differ: %q vs %q", prev, got)
			}
			if prev >= got {
				t.Fatalf("%q should sort before %q", prev, got)
			}
		}
		prev = got
	}
}

func TestSendMessageFallsBackToRules(t *testing.T) {
	svc := newChatService(t, &fakeAI{textErr: fmt.Errorf("quota exceeded")})

	reply, err := svc.SendMessage(context.Background(), ChatInput{UserID: "user-1", Message: "What is the mandi price for rice?"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.GeneratedBy != GeneratedByRules {
		t.Fatalf("generated_by = %q, want rules", reply.GeneratedBy)
	}
	if reply.Reply != ruleReplies["market"] {
		t.Fatalf("unexpected rule reply %q", reply.Reply)
	}
}

func TestDetectIntents(t *testing.T) {
	cases := []struct {
		message string
		want    []string
	}{
		{"Will it rain this week?", []string{"weather"}},
		{"Best price for wheat at the mandi", []string{"market"}},
		{"My tomato leaves have spots and fungus", []string{"disease"}},
		{"When should I water and add urea?", []string{"irrigation", "fertilizer"}},
		{"Hello", []string{"general"}},
	}
	for _, tc := range cases {
		got := detectIntents(tc.message)
		if len(got) != len(tc.want) {
			t.Fatalf("%q: intents %v, want %v", tc.message, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q: intents %v, want %v", tc.message, got, tc.want)
			}
		}
	}
}

func TestSessionsSummarizeConversations(t *testing.T) {
	svc := newChatService(t, &fakeAI{textReply: "ok"})
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, ChatInput{UserID: "user-1", Message: "Will it rain tomorrow?"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.SendMessage(ctx, ChatInput{UserID: "user-1", SessionID: first.SessionID, Message: "And the day after? More rain?"}); err != nil {
		t.Fatalf("send follow-up: %v", err)
	}
	second, err := svc.SendMessage(ctx, ChatInput{UserID: "user-1", Message: "Rice price today?"})
	if err != nil {
		t.Fatalf("send second session: %v", err)
	}

	sessions, err := svc.Sessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	// Most recent session first.
	if sessions[0].SessionID != second.SessionID {
		t.Fatalf("expected newest session first, got %s", sessions[0].SessionID)
	}
	for _, s := range sessions {
		if s.SessionID == first.SessionID {
			if s.MessageCount != 4 {
				t.Fatalf("first session count = %d, want 4", s.MessageCount)
			}
			if s.Title != "Will it rain tomorrow?" {
				t.Fatalf("unexpected title %q", s.Title)
			}
			if s.TopIntent != "weather" {
				t.Fatalf("top intent = %q, want weather", s.TopIntent)
			}
		}
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc := newChatService(t, &fakeAI{textReply: "ok"})
	if _, err := svc.SendMessage(context.Background(), ChatInput{UserID: "user-1"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
