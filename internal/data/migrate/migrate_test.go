package migrate

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/data/repos/testutil"
	"github.com/farmassist/farmassist-backend/internal/docstore"
	types "github.com/farmassist/farmassist-backend/internal/domain"
)

func newMigrator(t *testing.T, db *gorm.DB, store docstore.Store) *Migrator {
	t.Helper()
	log := testutil.Logger(t)
	return New(store,
		repos.NewUserRepo(db, log),
		repos.NewFieldRepo(db, log),
		repos.NewDiseaseReportRepo(db, log),
		repos.NewIrrigationRecordRepo(db, log),
		repos.NewFertilizerRecordRepo(db, log),
		repos.NewMarketPriceRepo(db, log),
		repos.NewMarketFavoriteRepo(db, log),
		repos.NewWeatherForecastRepo(db, log),
		repos.NewChatMessageRepo(db, log),
		log)
}

func seedDataset(t *testing.T, db *gorm.DB) (*types.User, *types.Field) {
	t.Helper()
	user := &types.User{Username: "ramesh", Email: "ramesh@example.com", PasswordHash: "x", FullName: "Ramesh Kumar"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	field := &types.Field{UserID: user.ID, Name: "North plot", CropType: "wheat", Area: 2.5}
	if err := db.Create(field).Error; err != nil {
		t.Fatalf("seed field: %v", err)
	}
	report := &types.DiseaseReport{
		UserID: user.ID, FieldID: field.ID,
		DiseaseName:     "leaf rust",
		DetectionDate:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		ConfidenceScore: 0.82,
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}
	price := &types.MarketPrice{CropType: "wheat", MarketName: "Pune APMC", Price: 24.5, Date: time.Now().UTC()}
	if err := db.Create(price).Error; err != nil {
		t.Fatalf("seed price: %v", err)
	}
	msg := &types.ChatMessage{UserID: user.ID, SessionID: "s1", Message: "hello", Sender: types.SenderUser}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return user, field
}

func TestRunCopiesEverything(t *testing.T) {
	db := testutil.DB(t)
	store := docstore.NewMemoryStore()
	user, field := seedDataset(t, db)
	m := newMigrator(t, db, store)

	summary, err := m.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	copied, skipped, failed := summary.Totals()
	if copied != 5 || skipped != 0 || failed != 0 {
		t.Fatalf("unexpected totals copied=%d skipped=%d failed=%d", copied, skipped, failed)
	}

	ctx := context.Background()
	userDoc, err := store.Get(ctx, docstore.UsersCollection, user.ID.String())
	if err != nil {
		t.Fatalf("migrated user missing: %v", err)
	}
	if userDoc["username"] != "ramesh" {
		t.Fatalf("unexpected user doc: %+v", userDoc)
	}

	fieldDoc, err := store.Get(ctx, docstore.FieldsCollection, field.ID.String())
	if err != nil {
		t.Fatalf("migrated field missing: %v", err)
	}
	if fieldDoc["user_id"] != user.ID.String() {
		t.Fatalf("field doc lost its owner: %+v", fieldDoc)
	}

	reports, err := store.List(ctx, docstore.DiseaseReportsCollection, docstore.ListOptions{
		Filters: []docstore.Filter{docstore.Eq("field_id", field.ID.String())},
	})
	if err != nil || len(reports) != 1 {
		t.Fatalf("expected 1 migrated report, got %d (err %v)", len(reports), err)
	}
	if reports[0]["detection_date"] != "2025-03-14" {
		t.Fatalf("date not normalized: %v", reports[0]["detection_date"])
	}

	// uniqueness reservations come along
	if _, err := store.Get(ctx, docstore.UserLookupsCollection, "username:ramesh"); err != nil {
		t.Fatalf("username reservation missing: %v", err)
	}
}

func TestRunChatStampsStayOrdered(t *testing.T) {
	db := testutil.DB(t)
	store := docstore.NewMemoryStore()
	user, _ := seedDataset(t, db)
	ctx := context.Background()

	// Same-second turns whose fractional parts differ in width, plus a
	// whole-second one; string ordering of the migrated stamps must
	// still match chronology.
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	turns := []*types.ChatMessage{
		{UserID: user.ID, SessionID: "s2", Message: "first", Sender: types.SenderUser, Timestamp: base.Add(120 * time.Millisecond)},
		{UserID: user.ID, SessionID: "s2", Message: "second", Sender: types.SenderAssistant, Timestamp: base.Add(121 * time.Millisecond)},
		{UserID: user.ID, SessionID: "s2", Message: "third", Sender: types.SenderUser, Timestamp: base.Add(5 * time.Second)},
	}
	for _, turn := range turns {
		if err := db.Create(turn).Error; err != nil {
			t.Fatalf("seed turn: %v", err)
		}
	}

	m := newMigrator(t, db, store)
	if _, err := m.Run(ctx, Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	docs, err := store.List(ctx, docstore.ChatHistoryCollection, docstore.ListOptions{
		Filters: []docstore.Filter{docstore.Eq("session_id", "s2")},
		OrderBy: "timestamp",
	})
	if err != nil {
		t.Fatalf("list migrated turns: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d migrated turns, want 3", len(docs))
	}
	var prev string
	for i, doc := range docs {
		msg, _ := doc["message"].(string)
		if want := turns[i].Message; msg != want {
			t.Fatalf("turn %d = %q, want %q", i, msg, want)
		}
		stamp, _ := doc["timestamp"].(string)
		if prev != "" {
			if len(stamp) != len(prev) {
				t.Fatalf("stamp widths differ: %q vs %q", prev, stamp)
			}
			if prev >= stamp {
				t.Fatalf("%q should sort before %q", prev, stamp)
			}
		}
		prev = stamp
	}
}

func TestRunSkipExisting(t *testing.T) {
	db := testutil.DB(t)
	store := docstore.NewMemoryStore()
	user, _ := seedDataset(t, db)
	m := newMigrator(t, db, store)
	ctx := context.Background()

	if _, err := m.Run(ctx, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// tamper with a migrated doc to observe overwrite-vs-skip
	if _, err := store.Update(ctx, docstore.UsersCollection, user.ID.String(), map[string]any{"full_name": "edited"}); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	summary, err := m.Run(ctx, Options{SkipExisting: true})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	copied, skipped, failed := summary.Totals()
	if copied != 0 || skipped != 5 || failed != 0 {
		t.Fatalf("unexpected totals copied=%d skipped=%d failed=%d", copied, skipped, failed)
	}
	doc, err := store.Get(ctx, docstore.UsersCollection, user.ID.String())
	if err != nil {
		t.Fatalf("get user doc: %v", err)
	}
	if doc["full_name"] != "edited" {
		t.Fatal("SkipExisting must leave existing documents untouched")
	}
}

func TestRunOverwritesByDefault(t *testing.T) {
	db := testutil.DB(t)
	store := docstore.NewMemoryStore()
	user, _ := seedDataset(t, db)
	m := newMigrator(t, db, store)
	ctx := context.Background()

	if _, err := m.Run(ctx, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := store.Update(ctx, docstore.UsersCollection, user.ID.String(), map[string]any{"full_name": "edited"}); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if _, err := m.Run(ctx, Options{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	doc, err := store.Get(ctx, docstore.UsersCollection, user.ID.String())
	if err != nil {
		t.Fatalf("get user doc: %v", err)
	}
	if doc["full_name"] != "Ramesh Kumar" {
		t.Fatalf("default run should overwrite, got %v", doc["full_name"])
	}
}
