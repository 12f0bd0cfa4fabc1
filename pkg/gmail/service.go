package gmail

import (
	"context"
	"fmt"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = emaildomain.TokenUpdateFunc

// appliedEmailQuery narrows the forwarding filter to job-application
// confirmation mail. Subject phrasing covers the common applicant
// tracking systems.
const appliedEmailQuery = `subject:("application received" OR "received your application" OR ` +
	`"thank you for applying" OR "thanks for applying" OR "your application to" OR ` +
	`"application submitted" OR "we received your application" OR ` +
	`"thank you for your application" OR "job application confirmation")`

type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// gmailService creates a Gmail client with the user's access token
func (s *Service) gmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// CreateForwardingFilter installs a Gmail filter forwarding
// job-application mail to the user's tracking address. The tracking
// address must already be registered as a verified forwarding address on
// the account, which Gmail enforces server-side.
func (s *Service) CreateForwardingFilter(ctx context.Context, accessToken, refreshToken, trackingAddress string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	filter := &gmail.Filter{
		Criteria: &gmail.FilterCriteria{
			Query: appliedEmailQuery,
		},
		Action: &gmail.FilterAction{
			Forward: trackingAddress,
		},
	}

	if _, err := srv.Users.Settings.Filters.Create("me", filter).Do(); err != nil {
		return fmt.Errorf("unable to create forwarding filter: %v", err)
	}
	return nil
}

// ValidateToken checks that the granted token can reach the Gmail
// settings surface at all.
func (s *Service) ValidateToken(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}
	if _, err := srv.Users.GetProfile("me").Do(); err != nil {
		return fmt.Errorf("unable to validate Gmail token: %v", err)
	}
	return nil
}
