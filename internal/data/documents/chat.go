package documents

import (
	"context"
	"sort"

	"github.com/farmassist/farmassist-backend/internal/docstore"
	"github.com/farmassist/farmassist-backend/internal/domain"
)

type ChatMessages struct {
	Model
}

// SessionSummary is one row of the conversation list screen.
type SessionSummary struct {
	SessionID     string `json:"session_id"`
	Title         string `json:"title"`
	MessageCount  int    `json:"message_count"`
	LastTimestamp string `json:"last_timestamp"`
	TopIntent     string `json:"top_intent,omitempty"`
}

const sessionTitleRunes = 50

// GetByUserAndSession returns one conversation oldest message first.
func (c *ChatMessages) GetByUserAndSession(ctx context.Context, userID, sessionID string) ([]map[string]any, error) {
	return c.List(ctx, docstore.ListOptions{
		Filters: []docstore.Filter{
			docstore.Eq("user_id", userID),
			docstore.Eq("session_id", sessionID),
		},
		OrderBy: "timestamp",
	})
}

// GetSessions folds a user's whole history into per-session summaries,
// most recent session first. The title is the session's earliest
// user-sent message, cut at 50 runes.
func (c *ChatMessages) GetSessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	msgs, err := c.List(ctx, docstore.ListOptions{
		Filters: []docstore.Filter{docstore.Eq("user_id", userID)},
		OrderBy: "timestamp",
	})
	if err != nil {
		return nil, err
	}

	type agg struct {
		summary     SessionSummary
		intentCount map[string]int
		intentOrder []string
	}
	bySession := map[string]*agg{}
	var order []string

	for _, msg := range msgs {
		sessionID, _ := msg["session_id"].(string)
		if sessionID == "" {
			continue
		}
		a, ok := bySession[sessionID]
		if !ok {
			a = &agg{summary: SessionSummary{SessionID: sessionID}, intentCount: map[string]int{}}
			bySession[sessionID] = a
			order = append(order, sessionID)
		}
		a.summary.MessageCount++
		if ts, _ := msg["timestamp"].(string); ts > a.summary.LastTimestamp {
			a.summary.LastTimestamp = ts
		}
		if sender, _ := msg["sender"].(string); sender == domain.SenderUser && a.summary.Title == "" {
			a.summary.Title = truncateRunes(stringField(msg, "message"), sessionTitleRunes)
		}
		for _, intent := range messageIntents(msg) {
			if a.intentCount[intent] == 0 {
				a.intentOrder = append(a.intentOrder, intent)
			}
			a.intentCount[intent]++
		}
	}

	summaries := make([]SessionSummary, 0, len(order))
	for _, sessionID := range order {
		a := bySession[sessionID]
		if a.summary.Title == "" {
			a.summary.Title = "New conversation"
		}
		best, bestCount := "", 0
		for _, intent := range a.intentOrder {
			if a.intentCount[intent] > bestCount {
				best, bestCount = intent, a.intentCount[intent]
			}
		}
		a.summary.TopIntent = best
		summaries = append(summaries, a.summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastTimestamp > summaries[j].LastTimestamp
	})
	return summaries, nil
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// messageIntents reads context_data.intents, tolerating both typed and
// decoded-JSON shapes.
func messageIntents(doc map[string]any) []string {
	contextData, ok := doc["context_data"].(map[string]any)
	if !ok {
		return nil
	}
	switch raw := contextData["intents"].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
