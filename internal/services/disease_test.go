package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/media"
)

func newDiseaseService(t *testing.T, ai *fakeAI) (DiseaseService, testEnv) {
	t.Helper()
	env := newEnv(t)
	mediaStore, err := media.NewLocalStore(t.TempDir(), env.log)
	if err != nil {
		t.Fatalf("media store: %v", err)
	}
	svc := NewDiseaseService(env.docs, repos.NewDiseaseReportRepo(env.gdb, env.log), ai, mediaStore, env.log)
	return svc, env
}

func TestParseDetectionSections(t *testing.T) {
	analysis := `Disease name: Rice Blast
Confidence level: 0.92
Symptoms: Diamond-shaped lesions on leaves.
Recommended treatments: Apply tricyclazole and improve drainage.`

	detection, ok := parseDetection(analysis)
	if !ok {
		t.Fatal("expected a parsed detection")
	}
	if detection.DiseaseName != "Rice Blast" {
		t.Fatalf("name = %q", detection.DiseaseName)
	}
	if detection.ConfidenceScore != 0.92 {
		t.Fatalf("confidence = %v, want 0.92", detection.ConfidenceScore)
	}
	if detection.Symptoms != "Diamond-shaped lesions on leaves." {
		t.Fatalf("symptoms = %q", detection.Symptoms)
	}
	if detection.TreatmentRecommendations != "Apply tricyclazole and improve drainage." {
		t.Fatalf("treatments = %q", detection.TreatmentRecommendations)
	}
}

func TestParseConfidenceForms(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"0.92", 0.92},
		{"92%", 0.92},
		{"92", 0.92},
		{"9/10", 0.9},
	}
	for _, tc := range cases {
		got, ok := parseConfidence(tc.in)
		if !ok {
			t.Fatalf("%q: expected a parse", tc.in)
		}
		if got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, ok := parseConfidence("very sure"); ok {
		t.Fatal("expected non-numeric confidence to fail")
	}
}

func TestParseDetectionDefaultsConfidence(t *testing.T) {
	detection, ok := parseDetection("Disease name: Brown Spot\nConfidence level: high\n")
	if !ok {
		t.Fatal("expected a parsed detection")
	}
	if detection.ConfidenceScore != 0.85 {
		t.Fatalf("confidence = %v, want default 0.85", detection.ConfidenceScore)
	}
}

func TestParseDetectionRequiresNameHeader(t *testing.T) {
	if _, ok := parseDetection("The crop looks mostly healthy."); ok {
		t.Fatal("expected parse to fail without the name header")
	}
}

func TestDetectFallsBackToRuleTable(t *testing.T) {
	svc, _ := newDiseaseService(t, &fakeAI{visionErr: fmt.Errorf("quota exceeded")})

	detection, err := svc.Detect(context.Background(), DetectionInput{
		CropType: "rice",
		Filename: "leaf.jpg",
		Image:    []byte("jpegbytes"),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if detection.GeneratedBy != GeneratedByRules {
		t.Fatalf("generated_by = %q, want rules", detection.GeneratedBy)
	}
	if detection.ConfidenceScore != 0.7 {
		t.Fatalf("confidence = %v, want 0.7", detection.ConfidenceScore)
	}
	found := false
	for _, name := range commonDiseases["rice"] {
		if detection.DiseaseName == name {
			found = true
		}
	}
	if !found {
		t.Fatalf("disease %q not in the rice table", detection.DiseaseName)
	}
	if detection.ImagePath == "" {
		t.Fatal("expected the image to be stored")
	}
}

func TestDetectUnknownCrop(t *testing.T) {
	svc, _ := newDiseaseService(t, &fakeAI{visionErr: fmt.Errorf("down")})
	detection, err := svc.Detect(context.Background(), DetectionInput{CropType: "dragonfruit", Image: []byte("x")})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if detection.DiseaseName != "Possible Disease Detected" || detection.ConfidenceScore != 0.5 {
		t.Fatalf("unexpected generic detection %+v", detection)
	}
}

func TestDetectSavesReportWhenOwnershipGiven(t *testing.T) {
	ai := &fakeAI{visionReply: "Disease name: Early Blight\nConfidence level: 80%\nSymptoms: Dark concentric rings.\nRecommended treatments: Apply copper fungicide."}
	svc, _ := newDiseaseService(t, ai)
	ctx := context.Background()

	detection, err := svc.Detect(ctx, DetectionInput{
		UserID:   "user-1",
		FieldID:  "field-1",
		CropType: "tomato",
		Image:    []byte("jpegbytes"),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if detection.ReportID == "" {
		t.Fatal("expected a stored report id")
	}
	if detection.ConfidenceScore != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", detection.ConfidenceScore)
	}

	reports, err := svc.ListReports(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if reports[0].Status != "detected" || reports[0].DiseaseName != "Early Blight" {
		t.Fatalf("unexpected report %+v", reports[0])
	}
}

func TestDetectWithoutImage(t *testing.T) {
	svc, _ := newDiseaseService(t, &fakeAI{})
	if _, err := svc.Detect(context.Background(), DetectionInput{CropType: "rice"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestUpdateReportStatus(t *testing.T) {
	ai := &fakeAI{visionReply: "Disease name: Leaf Mold\nConfidence level: 0.75"}
	svc, _ := newDiseaseService(t, ai)
	ctx := context.Background()

	detection, err := svc.Detect(ctx, DetectionInput{UserID: "user-1", FieldID: "field-1", CropType: "tomato", Image: []byte("x")})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if err := svc.UpdateReportStatus(ctx, detection.ReportID, "treating"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	reports, err := svc.ListReports(ctx, "", "field-1")
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 1 || reports[0].Status != "treating" {
		t.Fatalf("status not updated: %+v", reports)
	}

	if err := svc.UpdateReportStatus(ctx, detection.ReportID, "cured"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}
