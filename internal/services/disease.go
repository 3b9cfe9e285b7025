package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmassist/farmassist-backend/internal/clients/genai"
	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
	"github.com/farmassist/farmassist-backend/internal/platform/media"
)

type DetectionInput struct {
	UserID   string
	FieldID  string
	CropType string
	Filename string
	MimeType string
	Image    []byte
}

type Detection struct {
	DiseaseName              string  `json:"disease_name"`
	ConfidenceScore          float64 `json:"confidence_score"`
	Symptoms                 string  `json:"symptoms"`
	TreatmentRecommendations string  `json:"treatment_recommendations"`
	ImagePath                string  `json:"image_path,omitempty"`
	ReportID                 string  `json:"report_id,omitempty"`
	GeneratedBy              string  `json:"generated_by"`
}

type DiseaseService interface {
	// Detect analyzes an uploaded crop photo, falling back to the
	// per-crop rule table when the AI path fails. A report is stored
	// only when both user and field ids are supplied.
	Detect(ctx context.Context, in DetectionInput) (Detection, error)
	ListReports(ctx context.Context, userID, fieldID string) ([]fallback.ReportRecord, error)
	UpdateReportStatus(ctx context.Context, reportID, status string) error
}

type diseaseService struct {
	docs       *documents.Documents
	reportRepo repos.DiseaseReportRepo
	ai         genai.Client
	media      media.Store
	log        *logger.Logger
}

func NewDiseaseService(docs *documents.Documents, reportRepo repos.DiseaseReportRepo, ai genai.Client, mediaStore media.Store, baseLog *logger.Logger) DiseaseService {
	return &diseaseService{
		docs:       docs,
		reportRepo: reportRepo,
		ai:         ai,
		media:      mediaStore,
		log:        baseLog.With("service", "DiseaseService"),
	}
}

const detectionPrompt = `Analyze this crop image and identify any diseases. If a disease is present, provide:
1. Disease name
2. Confidence level (as a decimal between 0.0 and 1.0)
3. Symptoms visible in the image
4. Recommended treatments

Format each item as "Disease name:", "Confidence level:", "Symptoms:" and "Recommended treatments:".
Crop type: `

func (ds *diseaseService) Detect(ctx context.Context, in DetectionInput) (Detection, error) {
	if len(in.Image) == 0 {
		return Detection{}, fmt.Errorf("image is required: %w", apperr.ErrInvalidArgument)
	}

	imagePath := ds.saveImage(ctx, in)

	detection, ok := ds.analyze(ctx, in)
	if !ok {
		detection = ruleDetection(in.CropType, imagePath)
	}
	detection.ImagePath = imagePath

	if in.UserID != "" && in.FieldID != "" {
		reportID, err := ds.saveReport(ctx, in, detection)
		if err != nil {
			return Detection{}, fmt.Errorf("save report: %w", err)
		}
		detection.ReportID = reportID
	}
	return detection, nil
}

func (ds *diseaseService) saveImage(ctx context.Context, in DetectionInput) string {
	name := in.Filename
	if name == "" {
		name = "upload.jpg"
	}
	owner := in.UserID
	if owner == "" {
		owner = "anonymous"
	}
	key := path.Join("disease", owner, time.Now().UTC().Format("20060102150405")+"_"+path.Base(name))
	stored, err := ds.media.Save(ctx, key, bytes.NewReader(in.Image))
	if err != nil {
		ds.log.Warn("failed to persist uploaded image", "key", key, "error", err)
		return ""
	}
	return stored
}

func (ds *diseaseService) analyze(ctx context.Context, in DetectionInput) (Detection, bool) {
	completion, err := ds.ai.GenerateVision(ctx, detectionPrompt+in.CropType, in.Image, in.MimeType)
	if err != nil {
		ds.log.Warn("vision analysis failed, using rule-based detection", "error", err)
		return Detection{}, false
	}
	detection, ok := parseDetection(completion)
	if !ok {
		ds.log.Warn("vision output missing expected sections, using rule-based detection")
	}
	return detection, ok
}

// parseDetection extracts the labeled sections from a completion. The
// disease name header is mandatory; everything else degrades gracefully.
func parseDetection(analysis string) (Detection, bool) {
	rest, found := cutSection(analysis, "Disease name:")
	if !found {
		return Detection{}, false
	}
	detection := Detection{
		DiseaseName:     firstLine(rest),
		ConfidenceScore: 0.85,
		GeneratedBy:     GeneratedByAI,
	}
	if detection.DiseaseName == "" {
		return Detection{}, false
	}

	if conf, ok := cutSection(rest, "Confidence level:"); ok {
		if parsed, ok := parseConfidence(firstLine(conf)); ok {
			detection.ConfidenceScore = parsed
		}
	}
	if symptoms, ok := cutSection(rest, "Symptoms:"); ok {
		if before, _, hasTreatment := strings.Cut(symptoms, "Recommended treatments:"); hasTreatment {
			detection.Symptoms = strings.TrimSpace(before)
		} else {
			detection.Symptoms = strings.TrimSpace(symptoms)
		}
	}
	if treatment, ok := cutSection(rest, "Recommended treatments:"); ok {
		detection.TreatmentRecommendations = strings.TrimSpace(treatment)
	}
	return detection, true
}

func cutSection(s, header string) (string, bool) {
	_, tail, ok := strings.Cut(s, header)
	return tail, ok
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// parseConfidence accepts decimal (0.92), percentage (92 or 92%) and
// fractional (9/10) confidence spellings, normalized into [0,1].
func parseConfidence(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if s == "" {
		return 0, false
	}
	if num, denom, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(denom), 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return clampUnit(n / d), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if v > 1 {
		v /= 100
	}
	return clampUnit(v), true
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var commonDiseases = map[string][]string{
	"rice":   {"Rice Blast", "Brown Spot", "Bacterial Leaf Blight"},
	"wheat":  {"Wheat Rust", "Powdery Mildew", "Septoria Leaf Spot"},
	"cotton": {"Cotton Boll Rot", "Verticillium Wilt", "Target Spot"},
	"tomato": {"Early Blight", "Late Blight", "Leaf Mold"},
	"potato": {"Late Blight", "Early Blight", "Black Scurf"},
}

func ruleDetection(cropType, imagePath string) Detection {
	candidates, ok := commonDiseases[strings.ToLower(strings.TrimSpace(cropType))]
	if !ok {
		return Detection{
			DiseaseName:              "Possible Disease Detected",
			ConfidenceScore:          0.5,
			Symptoms:                 "Some discoloration and spots visible on leaves.",
			TreatmentRecommendations: "Recommend consulting with a local agricultural extension for proper diagnosis and treatment.",
			GeneratedBy:              GeneratedByRules,
		}
	}
	name := candidates[int(stableHash(imagePath))%len(candidates)]
	return Detection{
		DiseaseName:              name,
		ConfidenceScore:          0.7,
		Symptoms:                 fmt.Sprintf("Visible symptoms include discoloration and lesions typical of %s.", name),
		TreatmentRecommendations: fmt.Sprintf("Recommended treatment includes fungicide application and improved field drainage. Consult a local agricultural extension for specific treatments for %s.", name),
		GeneratedBy:              GeneratedByRules,
	}
}

func (ds *diseaseService) saveReport(ctx context.Context, in DetectionInput, detection Detection) (string, error) {
	record, backend, err := fallback.Try(ctx, ds.log, "disease.save_report",
		func(ctx context.Context) (fallback.ReportRecord, error) {
			doc, err := ds.docs.DiseaseReports.Create(ctx, map[string]any{
				"user_id":                   in.UserID,
				"field_id":                  in.FieldID,
				"disease_name":              detection.DiseaseName,
				"detection_date":            time.Now().UTC().Format("2006-01-02"),
				"confidence_score":          detection.ConfidenceScore,
				"image_path":                detection.ImagePath,
				"symptoms":                  detection.Symptoms,
				"treatment_recommendations": detection.TreatmentRecommendations,
				"status":                    types.ReportStatusDetected,
			})
			if err != nil {
				return fallback.ReportRecord{}, err
			}
			return fallback.ReportFromDoc(doc), nil
		},
		func(ctx context.Context) (fallback.ReportRecord, error) {
			userID, err := uuid.Parse(in.UserID)
			if err != nil {
				return fallback.ReportRecord{}, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			fieldID, err := uuid.Parse(in.FieldID)
			if err != nil {
				return fallback.ReportRecord{}, fmt.Errorf("malformed field id: %w", apperr.ErrInvalidArgument)
			}
			row, err := ds.reportRepo.Create(ctx, nil, &types.DiseaseReport{
				UserID:                   userID,
				FieldID:                  fieldID,
				DiseaseName:              detection.DiseaseName,
				ConfidenceScore:          detection.ConfidenceScore,
				ImagePath:                detection.ImagePath,
				Symptoms:                 detection.Symptoms,
				TreatmentRecommendations: detection.TreatmentRecommendations,
				Status:                   types.ReportStatusDetected,
			})
			if err != nil {
				return fallback.ReportRecord{}, err
			}
			return fallback.ReportFromRow(row), nil
		})
	if err != nil {
		return "", err
	}
	ds.log.Info("disease report stored", "report_id", record.ID, "disease", detection.DiseaseName, "backend", backend)
	return record.ID, nil
}

func (ds *diseaseService) ListReports(ctx context.Context, userID, fieldID string) ([]fallback.ReportRecord, error) {
	if userID == "" && fieldID == "" {
		return nil, fmt.Errorf("user_id or field_id is required: %w", apperr.ErrInvalidArgument)
	}
	records, _, err := fallback.Try(ctx, ds.log, "disease.reports",
		func(ctx context.Context) ([]fallback.ReportRecord, error) {
			var docs []map[string]any
			var err error
			if fieldID != "" {
				docs, err = ds.docs.DiseaseReports.GetByFieldID(ctx, fieldID)
			} else {
				docs, err = ds.docs.DiseaseReports.GetByUserID(ctx, userID)
			}
			if err != nil {
				return nil, err
			}
			out := make([]fallback.ReportRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.ReportFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.ReportRecord, error) {
			var rows []*types.DiseaseReport
			if fieldID != "" {
				id, err := uuid.Parse(fieldID)
				if err != nil {
					return nil, fmt.Errorf("malformed field id: %w", apperr.ErrInvalidArgument)
				}
				rows, err = ds.reportRepo.GetByFieldID(ctx, nil, id)
				if err != nil {
					return nil, err
				}
			} else {
				id, err := uuid.Parse(userID)
				if err != nil {
					return nil, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
				}
				rows, err = ds.reportRepo.GetByUserID(ctx, nil, id)
				if err != nil {
					return nil, err
				}
			}
			out := make([]fallback.ReportRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.ReportFromRow(row))
			}
			return out, nil
		})
	return records, err
}

func (ds *diseaseService) UpdateReportStatus(ctx context.Context, reportID, status string) error {
	switch status {
	case types.ReportStatusDetected, types.ReportStatusTreating, types.ReportStatusResolved:
	default:
		return fmt.Errorf("unknown status %q: %w", status, apperr.ErrInvalidArgument)
	}
	_, _, err := fallback.Try(ctx, ds.log, "disease.update_status",
		func(ctx context.Context) (struct{}, error) {
			_, err := ds.docs.DiseaseReports.Update(ctx, reportID, map[string]any{"status": status})
			return struct{}{}, err
		},
		func(ctx context.Context) (struct{}, error) {
			id, err := uuid.Parse(reportID)
			if err != nil {
				return struct{}{}, fmt.Errorf("malformed report id: %w", apperr.ErrInvalidArgument)
			}
			return struct{}{}, ds.reportRepo.UpdateStatus(ctx, nil, id, status)
		})
	return err
}
