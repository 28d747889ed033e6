package clients

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"auction-house/internal/domain/apperr"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	ClientType ClientType
	Phone      string
	Address    string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates a client account. Staff accounts are never created here.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, apperr.Validation("Invalid email format")
	}
	if !isPasswordStrong(in.Password) {
		return nil, apperr.Validation("Password must be at least 8 characters long and contain both letters and numbers")
	}
	if in.ClientType == "" {
		in.ClientType = Buyer
	}
	if !in.ClientType.Valid() {
		return nil, apperr.Validation("client_type must be Buyer, Seller or Joint")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	pw := string(hashed)

	c := Client{
		Name:         in.Name,
		Email:        in.Email,
		Password:     &pw,
		AuthProvider: "local",
		Phone:        in.Phone,
		Address:      in.Address,
		ClientType:   in.ClientType,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Client{}).Where("email = ?", c.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("An account with this email already exists")
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Authenticate checks an email/password pair. Every failure is reported the
// same way so callers cannot probe for registered emails.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Client, error) {
	var c Client
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Auth("Invalid credentials")
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	if c.Password == nil || *c.Password == "" {
		return nil, apperr.Auth("This account uses Google sign-in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*c.Password), []byte(password)); err != nil {
		return nil, apperr.Auth("Invalid credentials")
	}
	return &c, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Client, error) {
	var c Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Client not found")
		}
		return nil, fmt.Errorf("load client %d: %w", id, err)
	}
	return &c, nil
}

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

// FindOrCreateGoogle resolves a Google identity to a client, linking an
// existing account with the same email when needed.
func (s *Service) FindOrCreateGoogle(ctx context.Context, g GoogleIdentity) (*Client, error) {
	db := s.db.WithContext(ctx)
	var c Client

	if g.Sub != "" {
		if err := db.Where("google_sub = ?", g.Sub).First(&c).Error; err == nil {
			return &c, nil
		}
	}

	email := strings.ToLower(strings.TrimSpace(g.Email))
	if err := db.Where("email = ?", email).First(&c).Error; err == nil {
		if c.GoogleSub == nil {
			sub := g.Sub
			if err := db.Model(&c).Updates(map[string]interface{}{
				"google_sub":    sub,
				"auth_provider": "google",
			}).Error; err != nil {
				return nil, fmt.Errorf("link google account: %w", err)
			}
			c.GoogleSub = &sub
		}
		return &c, nil
	}

	sub := g.Sub
	c = Client{
		Name:         g.Name,
		Email:        email,
		AuthProvider: "google",
		GoogleSub:    &sub,
		ClientType:   Buyer,
	}
	if c.Name == "" {
		c.Name = email
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create google client: %w", err)
	}
	return &c, nil
}
