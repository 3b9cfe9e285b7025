package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/docstore"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type RegisterInput struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profile_image"`
}

type LoginResult struct {
	User  fallback.UserRecord `json:"user"`
	Token string              `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (fallback.UserRecord, error)
	Login(ctx context.Context, username, password string) (LoginResult, error)
	GetProfile(ctx context.Context, userID string) (fallback.UserRecord, error)
	ParseToken(tokenString string) (string, error)
}

type authService struct {
	docs      *documents.Documents
	userRepo  repos.UserRepo
	log       *logger.Logger
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(docs *documents.Documents, userRepo repos.UserRepo, jwtSecret string, accessTTL time.Duration, baseLog *logger.Logger) AuthService {
	return &authService{
		docs:      docs,
		userRepo:  userRepo,
		log:       baseLog.With("service", "AuthService"),
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (fallback.UserRecord, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return fallback.UserRecord{}, fmt.Errorf("username, email and password are required: %w", apperr.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fallback.UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	record, backend, err := fallback.Try(ctx, as.log, "auth.register",
		func(ctx context.Context) (fallback.UserRecord, error) {
			return as.registerDocument(ctx, in, string(hash))
		},
		func(ctx context.Context) (fallback.UserRecord, error) {
			return as.registerRelational(ctx, in, string(hash))
		})
	if err != nil {
		return fallback.UserRecord{}, err
	}
	as.log.Info("user registered", "username", in.Username, "backend", backend)
	return record, nil
}

// registerDocument claims both uniqueness reservations before writing the
// user document; losing the second claim rolls the first one back.
func (as *authService) registerDocument(ctx context.Context, in RegisterInput, hash string) (fallback.UserRecord, error) {
	id := docstore.GenerateID()
	if err := as.docs.Users.Reserve(ctx, "username", in.Username, id); err != nil {
		return fallback.UserRecord{}, err
	}
	if err := as.docs.Users.Reserve(ctx, "email", in.Email, id); err != nil {
		if relErr := as.docs.Users.ReleaseReservation(ctx, "username", in.Username); relErr != nil {
			as.log.Warn("failed to release username reservation", "username", in.Username, "error", relErr)
		}
		return fallback.UserRecord{}, err
	}

	doc, err := as.docs.Users.Create(ctx, map[string]any{
		"id":            id,
		"username":      in.Username,
		"email":         in.Email,
		"password_hash": hash,
		"full_name":     in.FullName,
		"phone":         in.Phone,
		"profile_image": in.ProfileImage,
		"is_active":     true,
	})
	if err != nil {
		return fallback.UserRecord{}, err
	}
	return fallback.UserFromDoc(doc), nil
}

func (as *authService) registerRelational(ctx context.Context, in RegisterInput, hash string) (fallback.UserRecord, error) {
	if taken, err := as.userRepo.UsernameExists(ctx, nil, in.Username); err != nil {
		return fallback.UserRecord{}, err
	} else if taken {
		return fallback.UserRecord{}, fmt.Errorf("username %q taken: %w", in.Username, apperr.ErrAlreadyExists)
	}
	if taken, err := as.userRepo.EmailExists(ctx, nil, in.Email); err != nil {
		return fallback.UserRecord{}, err
	} else if taken {
		return fallback.UserRecord{}, fmt.Errorf("email %q registered: %w", in.Email, apperr.ErrAlreadyExists)
	}

	row, err := as.userRepo.Create(ctx, nil, &types.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
		ProfileImage: in.ProfileImage,
		IsActive:     true,
	})
	if err != nil {
		return fallback.UserRecord{}, err
	}
	return fallback.UserFromRow(row), nil
}

func (as *authService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("username and password required: %w", apperr.ErrInvalidArgument)
	}

	type login struct {
		record fallback.UserRecord
		hash   string
	}
	result, _, err := fallback.Try(ctx, as.log, "auth.login",
		func(ctx context.Context) (login, error) {
			doc, err := as.docs.Users.GetByUsername(ctx, username)
			if err != nil {
				return login{}, err
			}
			hash, _ := doc["password_hash"].(string)
			return login{record: fallback.UserFromDoc(doc), hash: hash}, nil
		},
		func(ctx context.Context) (login, error) {
			row, err := as.userRepo.GetByUsername(ctx, nil, username)
			if err != nil {
				return login{}, err
			}
			return login{record: fallback.UserFromRow(row), hash: row.PasswordHash}, nil
		})
	if err != nil {
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(result.hash), []byte(password)); err != nil {
		return LoginResult{}, fmt.Errorf("invalid password: %w", apperr.ErrUnauthorized)
	}

	token, err := as.generateAccessToken(result.record)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: result.record, Token: token}, nil
}

func (as *authService) GetProfile(ctx context.Context, userID string) (fallback.UserRecord, error) {
	record, _, err := fallback.Try(ctx, as.log, "auth.profile",
		func(ctx context.Context) (fallback.UserRecord, error) {
			doc, err := as.docs.Users.Get(ctx, userID)
			if err != nil {
				return fallback.UserRecord{}, err
			}
			return fallback.UserFromDoc(doc), nil
		},
		func(ctx context.Context) (fallback.UserRecord, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fallback.UserRecord{}, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			row, err := as.userRepo.GetByID(ctx, nil, id)
			if err != nil {
				return fallback.UserRecord{}, err
			}
			return fallback.UserFromRow(row), nil
		})
	return record, err
}

func (as *authService) generateAccessToken(user fallback.UserRecord) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the subject user id.
func (as *authService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("malformed claims: %w", apperr.ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("missing subject: %w", apperr.ErrUnauthorized)
	}
	return sub, nil
}
