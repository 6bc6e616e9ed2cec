package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/models"
	"datadesigner/internal/repositories"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GoogleAuthService signs users in with Google, creating an account on first
// use of a verified email.
type GoogleAuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	userRepo    *repositories.UserRepository
	auth        *AuthService
	log         logrus.FieldLogger
}

func NewGoogleAuthService(oauth *oauth2.Config, userRepo *repositories.UserRepository, auth *AuthService, log logrus.FieldLogger) *GoogleAuthService {
	return &GoogleAuthService{
		oauth:       oauth,
		userInfoURL: googleUserInfoURL,
		userRepo:    userRepo,
		auth:        auth,
		log:         log,
	}
}

func (s *GoogleAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Callback exchanges the authorization code and returns an API token.
func (s *GoogleAuthService) Callback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "code exchange failed", err)
	}

	profile, err := s.fetchUser(ctx, token)
	if err != nil {
		s.log.WithError(err).Error("google: failed to fetch user info")
		return nil, apperrors.Internal(err)
	}
	if !profile.VerifiedEmail {
		return nil, apperrors.Unauthorized("email is not verified by Google")
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		user = &models.User{Username: usernameFor(profile), Email: email}
		if err := s.userRepo.Create(ctx, user); err != nil {
			s.log.WithError(err).WithField("email", email).Error("google: create user failed")
			return nil, apperrors.Internal(err)
		}
		s.log.WithField("user_id", user.ID).Info("user registered through google")
	}

	return s.auth.issue(ctx, user)
}

func (s *GoogleAuthService) fetchUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile googleUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &profile, nil
}

func usernameFor(p *googleUser) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
