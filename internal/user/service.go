// Package user はユーザー登録のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/storyline/internal/model"
	"github.com/hitoshi/storyline/internal/repository"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// RegisterInput はユーザー登録の入力を表す。
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Service はユーザー登録のサービス層。
type Service struct {
	users      repository.UserRepository
	bcryptCost int
	now        func() time.Time
}

// NewService はServiceを生成する。
// bcryptCostが0以下の場合はbcrypt.DefaultCostを使用する。
func NewService(users repository.UserRepository, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Register は新規ユーザーを登録する。
// メールアドレスは前後の空白のみ除去し、大文字小文字は保存された表記のまま扱う。
// 重複メールはEMAIL_TAKENエラーになる。UNIQUE制約により、
// 事前チェックなしでも同時登録の競合で重複行が生まれることはない。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(input.Email)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	if email == "" {
		return nil, model.NewInvalidFieldError("email", "空にできません")
	}
	if !strings.Contains(email, "@") {
		return nil, model.NewInvalidFieldError("email", "メールアドレスの形式ではありません")
	}
	if firstName == "" {
		return nil, model.NewInvalidFieldError("firstName", "空にできません")
	}
	if lastName == "" {
		return nil, model.NewInvalidFieldError("lastName", "空にできません")
	}
	if len(input.Password) < minPasswordLength {
		return nil, model.NewInvalidFieldError("password",
			fmt.Sprintf("%d文字以上で指定してください", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	newUser := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError(email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", newUser.ID),
		slog.String("email", email),
	)

	return newUser, nil
}
