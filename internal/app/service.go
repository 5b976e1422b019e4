package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/founderdesk/daylog/internal/ledger"
	"github.com/founderdesk/daylog/internal/models"
	"github.com/founderdesk/daylog/internal/review"
	"github.com/founderdesk/daylog/internal/scoring"
	"github.com/founderdesk/daylog/internal/store"
)

type Service struct {
	Config     *Config
	Store      store.SubmissionStore
	Auth       *Auth
	Policy     *review.Policy
	Ledger     *ledger.Ledger
	Recorder   *review.Recorder
	Calculator *scoring.Calculator
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	policy := review.NewPolicy(config.Review.Roles, config.Review.Routing)
	calculator := scoring.NewCalculator(store, config.Scoring.ProofBonus, config.Scoring.VerifyBonus)

	return &Service{
		Config:     config,
		Store:      store,
		Auth:       auth,
		Policy:     policy,
		Ledger:     ledger.New(store, policy, calculator),
		Recorder:   review.NewRecorder(store, policy, calculator, config.Review.RequiredApprovals),
		Calculator: calculator,
	}, nil
}

// Identity resolves the caller's (user id, role) pair. With auth enabled the
// bearer token is looked up in redis; with auth off the pair comes from
// plain headers, which only makes sense behind a trusted proxy or in dev.
func (s *Service) Identity(r *http.Request) (string, string, error) {
	if !s.Config.Server.EnableAuth {
		userID := r.Header.Get(s.Config.API.UserIDHeader)
		role := r.Header.Get(s.Config.API.UserRoleHeader)
		if userID == "" {
			return "", "", fmt.Errorf("missing %s header", s.Config.API.UserIDHeader)
		}
		return userID, models.NormalizeRole(role), nil
	}

	authHeader := r.Header.Get(s.Config.Auth.TokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "", fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	userID, role, err := s.Auth.Identify(r.Context(), token)
	if err != nil {
		return "", "", err
	}
	return userID, models.NormalizeRole(role), nil
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
