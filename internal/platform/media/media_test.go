package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store, err := NewLocalStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	stored, err := store.Save(ctx, "disease/u1/photo.jpg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rc, err := store.Open(ctx, stored)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "jpegbytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	store, err := NewLocalStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Save(context.Background(), "../escape.jpg", strings.NewReader("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}
