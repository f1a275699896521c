package services

import (
	"strings"

	"ayuta/internal/events"
	"ayuta/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	msgProfileSaved   = "Profile saved and signed in."
	msgProfileUpdated = "Profile updated."
	msgLoggedIn       = "Logged in. Your pages are updated."
	msgSignedOut      = "Signed out."
	msgDemoCleared    = "Demo data cleared."
	notSet            = "Not set"
)

// ProfileRequest is the registration and profile form.
type ProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email string `json:"email" validate:"required"`
}

// ClearRequest confirms a demo data wipe.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// PrefillView holds the values the account forms start with.
type PrefillView struct {
	LoginEmail    string `json:"loginEmail"`
	RegisterName  string `json:"registerName"`
	RegisterEmail string `json:"registerEmail"`
	RegisterPhone string `json:"registerPhone"`
}

// ProfileView is the profile page.
type ProfileView struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	SignedIn bool        `json:"signedIn"`
	Prefill  PrefillView `json:"prefill"`
}

// AccountService drives the account modal and the profile page.
type AccountService struct {
	tab      *Tab
	validate *validator.Validate
	logger   *zap.Logger
	page     *page[ProfileView]
}

func newAccountService(t *Tab) *AccountService {
	s := &AccountService{
		tab:      t,
		validate: validator.New(),
		logger:   t.logger,
	}
	s.page = newPage(t.bus, t.state, renderProfile, events.AuthUpdated, events.StateUpdated)
	return s
}

// ProfileView returns the last render of the profile page.
func (s *AccountService) ProfileView() ProfileView {
	return s.page.view()
}

// Prefill returns the account form prefill values.
func (s *AccountService) Prefill() PrefillView {
	return s.page.view().Prefill
}

// Register saves the profile and signs the user in.
func (s *AccountService) Register(req ProfileRequest) (Status, error) {
	return s.saveProfile(req, msgProfileSaved)
}

// UpdateProfile overwrites the profile and signs in with its email.
func (s *AccountService) UpdateProfile(req ProfileRequest) (Status, error) {
	return s.saveProfile(req, msgProfileUpdated)
}

func (s *AccountService) saveProfile(req ProfileRequest, message string) (Status, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validate.Struct(req); err != nil {
		return Status{}, &ActionError{Kind: KindValidation, Message: ErrMsgNameEmailRequired, Err: err}
	}

	res, err := s.tab.mutate(func(state *models.State) error {
		now := s.tab.now()
		state.User = &models.UserProfile{
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			UpdatedAt: now,
		}
		state.Session = &models.Session{Email: req.Email, LoggedInAt: now}
		return nil
	}, events.AuthUpdated, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	s.logger.Info("profile saved", zap.String("email", req.Email))
	return SuccessStatus(message, res), nil
}

// Login signs in with an email that matches the profile or any order.
func (s *AccountService) Login(req LoginRequest) (Status, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.validate.Var(email, "required"); err != nil {
		return Status{}, &ActionError{Kind: KindValidation, Message: ErrMsgLoginEmailRequired, Err: err}
	}

	res, err := s.tab.mutate(func(state *models.State) error {
		if !knownEmail(*state, email) {
			return NewLookupError(ErrMsgNoOrderForEmail)
		}
		state.Session = &models.Session{Email: email, LoggedInAt: s.tab.now()}
		return nil
	}, events.AuthUpdated, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	s.logger.Info("signed in", zap.String("email", email))
	return SuccessStatus(msgLoggedIn, res), nil
}

// Logout clears the session. The profile is kept.
func (s *AccountService) Logout() (Status, error) {
	res, err := s.tab.mutate(func(state *models.State) error {
		state.Session = nil
		return nil
	}, events.AuthUpdated, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus(msgSignedOut, res), nil
}

// ClearDemoData wipes every stored key and resets the tab to defaults.
func (s *AccountService) ClearDemoData(req ClearRequest) (Status, error) {
	if !req.Confirm {
		return Status{}, NewValidationError(ErrMsgClearNotConfirmed)
	}
	res := s.tab.reset(events.AuthUpdated, events.StateUpdated)
	s.logger.Info("demo data cleared", zap.Bool("unsaved", res.Unsaved()))
	return SuccessStatus(msgDemoCleared, res), nil
}

func knownEmail(state models.State, email string) bool {
	if state.User != nil && state.User.Email == email {
		return true
	}
	for _, o := range state.Orders {
		if o.Email == email {
			return true
		}
	}
	return false
}

func renderProfile(state models.State) ProfileView {
	view := ProfileView{
		Name:     notSet,
		Email:    notSet,
		Phone:    notSet,
		SignedIn: state.SessionEmail() != "",
		Prefill: PrefillView{
			LoginEmail:    state.PrefillEmail(),
			RegisterEmail: state.PrefillEmail(),
		},
	}
	if u := state.User; u != nil {
		view.Name = orNotSet(u.Name)
		view.Email = orNotSet(u.Email)
		view.Phone = orNotSet(u.Phone)
		view.Prefill.RegisterName = u.Name
		view.Prefill.RegisterPhone = u.Phone
	}
	return view
}

func orNotSet(v string) string {
	if v == "" {
		return notSet
	}
	return v
}
