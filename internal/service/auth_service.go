package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ai-chatspace-be/internal/dto"
	"ai-chatspace-be/internal/entity"
	"ai-chatspace-be/internal/pkg/serverutils"
	"ai-chatspace-be/internal/repository/specification"
	"ai-chatspace-be/internal/repository/unitofwork"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GoogleLoginURL() (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	googleConf *oauth2.Config
	httpClient *resty.Client
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, googleClientID, googleClientSecret, baseURL string) IAuthService {
	conf := &oauth2.Config{
		ClientID:     googleClientID,
		ClientSecret: googleClientSecret,
		RedirectURL:  baseURL + "/api/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		uowFactory: uowFactory,
		googleConf: conf,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", serverutils.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.Name,
		PasswordHash: &hashStr,
		CreatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{Id: user.Id}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("invalid credentials: %w", serverutils.ErrUnauthorized)
	}
	if user.PasswordHash == nil {
		return nil, fmt.Errorf("account registered via OAuth: %w", serverutils.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", serverutils.ErrUnauthorized)
	}

	token, err := signUserToken(user.Id)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User: dto.UserResponse{
			Id:    user.Id,
			Name:  user.FullName,
			Email: user.Email,
		},
	}, nil
}

func (s *authService) GoogleLoginURL() (string, error) {
	if s.googleConf.ClientID == "" {
		return "", fmt.Errorf("google login not configured: %w", serverutils.ErrBadRequest)
	}
	state := uuid.New().String()
	return s.googleConf.AuthCodeURL(state), nil
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", serverutils.ErrUnauthorized)
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("access_token", token.AccessToken).
		Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	if err := json.Unmarshal(resp.Body(), &googleUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if googleUser.Email == "" {
		return nil, fmt.Errorf("google account has no email: %w", serverutils.ErrUnauthorized)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: googleUser.Email})
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Email:     googleUser.Email,
			FullName:  googleUser.Name,
			AvatarURL: &googleUser.Picture,
			CreatedAt: time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
	}

	provider := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   "google",
		ProviderUserId: googleUser.ID,
		AvatarURL:      googleUser.Picture,
		CreatedAt:      time.Now(),
	}
	if err := uow.UserRepository().SaveUserProvider(ctx, provider); err != nil {
		return nil, err
	}

	signed, err := signUserToken(user.Id)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: signed,
		User: dto.UserResponse{
			Id:    user.Id,
			Name:  user.FullName,
			Email: user.Email,
		},
	}, nil
}

func signUserToken(userId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
