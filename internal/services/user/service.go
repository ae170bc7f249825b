package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventflex/internal/apperr"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/validation"
)

var (
	ErrUserNotFound    = apperr.NotFound("user not found")
	ErrPhoneTaken      = apperr.Conflict("an account with this phone number already exists")
	ErrFieldNotAllowed = apperr.BadRequest("this field cannot be set for your role")
	ErrBankIncomplete  = apperr.BadRequest("bank account name, number and IFSC must be provided together")
)

type Service interface {
	GetProfile(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*Profile, error)
}

// Profile is the user as shown to themselves; the account number is masked.
type Profile struct {
	*models.User
	BankAccountNumber string `json:"bank_account_number,omitempty"`
	HasPayoutAccount  bool   `json:"has_payout_account"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name              *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Phone             *string  `json:"phone" validate:"omitempty,phone"`
	City              *string  `json:"city" validate:"omitempty,max=100"`
	Bio               *string  `json:"bio" validate:"omitempty,max=1000"`
	Company           *string  `json:"company" validate:"omitempty,max=150"`
	Skills            []string `json:"skills" validate:"omitempty,max=20,dive,min=1,max=50"`
	BankAccountName   *string  `json:"bank_account_name" validate:"omitempty,min=2,max=100"`
	BankAccountNumber *string  `json:"bank_account_number" validate:"omitempty,numeric,min=6,max=20"`
	BankIFSC          *string  `json:"bank_ifsc" validate:"omitempty,ifsc"`
}

type service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toProfile(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*Profile, error) {
	if req.BankIFSC != nil {
		upper := strings.ToUpper(strings.TrimSpace(*req.BankIFSC))
		req.BankIFSC = &upper
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Skills != nil && user.Role != models.RoleGig {
		return nil, ErrFieldNotAllowed
	}
	if req.Company != nil && user.Role == models.RoleGig {
		return nil, ErrFieldNotAllowed
	}

	if req.Phone != nil && *req.Phone != user.Phone {
		existing, err := s.repo.GetByPhone(ctx, *req.Phone)
		if err == nil && existing.ID != user.ID {
			return nil, ErrPhoneTaken
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		user.Phone = *req.Phone
	}

	setString(&user.Name, req.Name)
	setString(&user.City, req.City)
	setString(&user.Bio, req.Bio)
	setString(&user.Company, req.Company)
	if req.Skills != nil {
		user.Skills = req.Skills
	}

	bankFields := 0
	for _, f := range []*string{req.BankAccountName, req.BankAccountNumber, req.BankIFSC} {
		if f != nil {
			bankFields++
		}
	}
	switch bankFields {
	case 0:
	case 3:
		user.BankAccountName = strings.TrimSpace(*req.BankAccountName)
		user.BankAccountNumber = *req.BankAccountNumber
		user.BankIFSC = *req.BankIFSC
	default:
		return nil, ErrBankIncomplete
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return toProfile(user), nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func toProfile(u *models.User) *Profile {
	return &Profile{
		User:              u,
		BankAccountNumber: u.MaskedAccountNumber(),
		HasPayoutAccount:  u.HasPayoutAccount(),
	}
}
