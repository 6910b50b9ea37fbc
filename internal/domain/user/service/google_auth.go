package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shop_backend/internal/domain/user/model"
	"shop_backend/internal/domain/user/repository"
	"shop_backend/internal/pkg/config"
	"shop_backend/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleAuthService 第三方身份源登录
type GoogleAuthService interface {
	// AuthURL 生成跳转到 Google 授权页的 URL
	AuthURL(state string) string
	// HandleCallback 用授权码换取用户信息，不存在则自动建号，返回已登录用户和 JWT
	HandleCallback(ctx context.Context, code string) (*model.User, string, error)
}

type googleAuthService struct {
	repo  repository.UserRepository
	oauth *oauth2.Config
}

// googleProfile userinfo 接口返回的字段子集
type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewGoogleAuthService 创建 Google 登录服务，配置缺失时返回错误
func NewGoogleAuthService(repo repository.UserRepository) (GoogleAuthService, error) {
	cfg := config.GlobalConfig.Google
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google oauth config missing")
	}

	return &googleAuthService{
		repo: repo,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}, nil
}

func (s *googleAuthService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s *googleAuthService) HandleCallback(ctx context.Context, code string) (*model.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("google code exchange failed: %w", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if profile.Email == "" {
		return nil, "", errors.New("google profile has no email")
	}

	user, err := s.findOrCreate(profile)
	if err != nil {
		return nil, "", err
	}

	jwtToken, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, jwtToken, nil
}

func (s *googleAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("google userinfo decode failed: %w", err)
	}
	return &profile, nil
}

// findOrCreate 按邮箱匹配本地账号，没有则创建
// 本地密码字段填随机值，Google 用户不能走凭据登录
func (s *googleAuthService) findOrCreate(profile *googleProfile) (*model.User, error) {
	user, err := s.repo.GetByEmail(profile.Email)
	if err == nil {
		if user.GoogleID == "" {
			user.GoogleID = profile.ID
			if err := s.repo.Update(user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = "Google User"
	}

	user = &model.User{
		Name:     name,
		Email:    profile.Email,
		Password: uuid.New().String(),
		Role:     model.RoleUser,
		GoogleID: profile.ID,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
