// Package token はJWTベアラートークンの発行と検証を提供する。
//
// トークンの有効性は署名と有効期限のみで決まるステートレス方式で、
// サーバー側にトークンを保存しない（失効リストも持たない）。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/storyline/internal/model"
)

// 署名アルゴリズムはHS256に固定する。
const signingMethod = "HS256"

// ErrTokenInvalid は署名不正・改ざん・アルゴリズム不一致のトークンを表す。
var ErrTokenInvalid = errors.New("token: invalid token")

// ErrTokenExpired は有効期限切れのトークンを表す。
var ErrTokenExpired = errors.New("token: token expired")

// IdentityPayload はトークンに埋め込む検証済みアイデンティティを表す。
type IdentityPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// PayloadFromUser はUserからトークン埋め込み用ペイロードを生成する。
// パスワードハッシュは決して含めない。
func PayloadFromUser(user *model.User) IdentityPayload {
	return IdentityPayload{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// IdentityClaims はトークンのクレームを表す。
// subjectは所有者のメールアドレスで、userクレームにアイデンティティを埋め込む。
type IdentityClaims struct {
	jwt.RegisteredClaims
	User IdentityPayload `json:"user"`
}

// Issuer はベアラートークンの発行・検証を行う。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer はIssuerを生成する。
// ttlは発行するトークンの有効期間（固定）。
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock は現在時刻の取得関数を差し替えたIssuerを返す。テスト用。
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	clone := *i
	clone.now = now
	return &clone
}

// Issue は検証済みアイデンティティから署名付きトークンを発行する。
// subjectはメールアドレス、有効期限は now + ttl。副作用はない。
func (i *Issuer) Issue(identity IdentityPayload) (string, error) {
	now := i.now()
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		User: identity,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 期限切れはErrTokenExpired、それ以外の不正はErrTokenInvalidにまとめる。
func (i *Issuer) Verify(raw string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	return claims, nil
}

// mapJWTError はjwtライブラリのエラーをパッケージのエラーに変換する。
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}
