package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/farmassist/farmassist-backend/internal/clients/genai"
	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// Provenance tags distinguishing AI output from the rule-based path.
const (
	GeneratedByAI    = "Google Gemini AI"
	GeneratedByRules = "Basic recommendation system"
)

type ChatInput struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatReply struct {
	SessionID   string   `json:"session_id"`
	Reply       string   `json:"reply"`
	Intents     []string `json:"intents"`
	GeneratedBy string   `json:"generated_by"`
}

type ChatService interface {
	SendMessage(ctx context.Context, in ChatInput) (ChatReply, error)
	History(ctx context.Context, userID, sessionID string) ([]fallback.ChatMessageRecord, error)
	Sessions(ctx context.Context, userID string) ([]documents.SessionSummary, error)
}

type chatService struct {
	docs        *documents.Documents
	messageRepo repos.ChatMessageRepo
	ai          genai.Client
	log         *logger.Logger
}

func NewChatService(docs *documents.Documents, messageRepo repos.ChatMessageRepo, ai genai.Client, baseLog *logger.Logger) ChatService {
	return &chatService{
		docs:        docs,
		messageRepo: messageRepo,
		ai:          ai,
		log:         baseLog.With("service", "ChatService"),
	}
}

const chatPromptPrefix = `You are FarmAssist, an agricultural assistant for Indian farmers.
Answer briefly and practically, in plain language a farmer can act on.
Question: `

func (cs *chatService) SendMessage(ctx context.Context, in ChatInput) (ChatReply, error) {
	in.Message = strings.TrimSpace(in.Message)
	if in.UserID == "" || in.Message == "" {
		return ChatReply{}, fmt.Errorf("user_id and message are required: %w", apperr.ErrInvalidArgument)
	}
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}

	intents := detectIntents(in.Message)
	now := time.Now().UTC()

	backend, err := cs.append(ctx, in.UserID, in.SessionID, in.Message, types.SenderUser, intents, now)
	if err != nil {
		return ChatReply{}, err
	}

	reply, generatedBy := cs.reply(ctx, in.Message, intents)

	// The assistant turn is stamped after the user turn so ordering by
	// timestamp keeps the conversation shape.
	if _, err := cs.append(ctx, in.UserID, in.SessionID, reply, types.SenderAssistant, intents, now.Add(time.Millisecond)); err != nil {
		cs.log.Warn("failed to store assistant reply", "session_id", in.SessionID, "error", err)
	}

	cs.log.Info("chat turn handled", "session_id", in.SessionID, "intents", intents, "backend", backend, "generated_by", generatedBy)
	return ChatReply{SessionID: in.SessionID, Reply: reply, Intents: intents, GeneratedBy: generatedBy}, nil
}

func (cs *chatService) append(ctx context.Context, userID, sessionID, message, sender string, intents []string, ts time.Time) (string, error) {
	_, backend, err := fallback.Try(ctx, cs.log, "chat.append",
		func(ctx context.Context) (struct{}, error) {
			_, err := cs.docs.ChatMessages.Create(ctx, map[string]any{
				"user_id":      userID,
				"session_id":   sessionID,
				"message":      message,
				"sender":       sender,
				"timestamp":    ts.UTC().Format(types.ChatTimestampLayout),
				"context_data": map[string]any{"intents": intents},
			})
			return struct{}{}, err
		},
		func(ctx context.Context) (struct{}, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return struct{}{}, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			contextData, err := json.Marshal(map[string]any{"intents": intents})
			if err != nil {
				return struct{}{}, err
			}
			_, err = cs.messageRepo.Create(ctx, nil, &types.ChatMessage{
				UserID:      id,
				SessionID:   sessionID,
				Message:     message,
				Sender:      sender,
				Timestamp:   ts,
				ContextData: datatypes.JSON(contextData),
			})
			return struct{}{}, err
		})
	return backend, err
}

func (cs *chatService) reply(ctx context.Context, message string, intents []string) (string, string) {
	completion, err := cs.ai.GenerateText(ctx, chatPromptPrefix+message)
	if err == nil && strings.TrimSpace(completion) != "" {
		return strings.TrimSpace(completion), GeneratedByAI
	}
	if err != nil {
		cs.log.Warn("ai reply failed, using rule-based answer", "error", err)
	}
	return ruleReply(intents), GeneratedByRules
}

func (cs *chatService) History(ctx context.Context, userID, sessionID string) ([]fallback.ChatMessageRecord, error) {
	if userID == "" || sessionID == "" {
		return nil, fmt.Errorf("user_id and session_id are required: %w", apperr.ErrInvalidArgument)
	}
	records, _, err := fallback.Try(ctx, cs.log, "chat.history",
		func(ctx context.Context) ([]fallback.ChatMessageRecord, error) {
			docs, err := cs.docs.ChatMessages.GetByUserAndSession(ctx, userID, sessionID)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.ChatMessageRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.ChatMessageFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.ChatMessageRecord, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return nil, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			rows, err := cs.messageRepo.GetByUserAndSession(ctx, nil, id, sessionID)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.ChatMessageRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.ChatMessageFromRow(row))
			}
			return out, nil
		})
	return records, err
}

func (cs *chatService) Sessions(ctx context.Context, userID string) ([]documents.SessionSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", apperr.ErrInvalidArgument)
	}
	summaries, _, err := fallback.Try(ctx, cs.log, "chat.sessions",
		func(ctx context.Context) ([]documents.SessionSummary, error) {
			return cs.docs.ChatMessages.GetSessions(ctx, userID)
		},
		func(ctx context.Context) ([]documents.SessionSummary, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return nil, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			rows, err := cs.messageRepo.GetByUserID(ctx, nil, id)
			if err != nil {
				return nil, err
			}
			records := make([]fallback.ChatMessageRecord, 0, len(rows))
			for _, row := range rows {
				records = append(records, fallback.ChatMessageFromRow(row))
			}
			return summarizeSessions(records), nil
		})
	return summaries, err
}

const sessionTitleRunes = 50

// summarizeSessions folds timestamp-ordered messages into the same
// per-session summaries the document facade produces.
func summarizeSessions(records []fallback.ChatMessageRecord) []documents.SessionSummary {
	type agg struct {
		summary     documents.SessionSummary
		intentCount map[string]int
		intentOrder []string
	}
	bySession := map[string]*agg{}
	var order []string

	for _, rec := range records {
		if rec.SessionID == "" {
			continue
		}
		a, ok := bySession[rec.SessionID]
		if !ok {
			a = &agg{summary: documents.SessionSummary{SessionID: rec.SessionID}, intentCount: map[string]int{}}
			bySession[rec.SessionID] = a
			order = append(order, rec.SessionID)
		}
		a.summary.MessageCount++
		if rec.Timestamp > a.summary.LastTimestamp {
			a.summary.LastTimestamp = rec.Timestamp
		}
		if rec.Sender == types.SenderUser && a.summary.Title == "" {
			a.summary.Title = truncateTitle(rec.Message)
		}
		for _, intent := range recordIntents(rec) {
			if a.intentCount[intent] == 0 {
				a.intentOrder = append(a.intentOrder, intent)
			}
			a.intentCount[intent]++
		}
	}

	summaries := make([]documents.SessionSummary, 0, len(order))
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
	return summaries
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= sessionTitleRunes {
		return s
	}
	return string(runes[:sessionTitleRunes]) + "..."
}

func recordIntents(rec fallback.ChatMessageRecord) []string {
	if rec.ContextData == nil {
		return nil
	}
	switch raw := rec.ContextData["intents"].(type) {
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

var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{"weather", []string{"weather", "rain", "temperature", "forecast", "humidity", "monsoon"}},
	{"market", []string{"price", "market", "sell", "mandi", "rate"}},
	{"disease", []string{"disease", "pest", "infection", "fungus", "spots", "blight", "wilt"}},
	{"irrigation", []string{"water", "irrigation", "irrigate", "drip", "moisture"}},
	{"fertilizer", []string{"fertilizer", "fertiliser", "nutrient", "npk", "urea", "manure"}},
}

// detectIntents tags a message with every matching topic; an untagged
// message gets the general intent.
func detectIntents(message string) []string {
	lowered := strings.ToLower(message)
	var intents []string
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				intents = append(intents, entry.intent)
				break
			}
		}
	}
	if len(intents) == 0 {
		intents = []string{"general"}
	}
	return intents
}

var ruleReplies = map[string]string{
	"weather":    "Check the weather section for the 7-day forecast for your location. Plan field work around the expected rain.",
	"market":     "Current mandi prices for major crops are in the market section. Compare nearby markets before selling.",
	"disease":    "Upload a clear photo of the affected leaves in the disease detection section for a diagnosis and treatment advice.",
	"irrigation": "Water early in the morning or late evening to reduce evaporation. Check soil moisture before irrigating again.",
	"fertilizer": "See the fertilizer recommendations section for advice matched to your field's crop and growth stage.",
	"general":    "I can help with weather forecasts, market prices, crop disease detection, irrigation and fertilizer advice. What would you like to know?",
}

func ruleReply(intents []string) string {
	for _, intent := range intents {
		if reply, ok := ruleReplies[intent]; ok {
			return reply
		}
	}
	return ruleReplies["general"]
}
