// Package model はドメインモデルを定義する。
package model

import "time"

// User は投稿者アイデンティティを表す。
// パスワードはbcryptハッシュのみを保持し、平文は扱わない。
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName はAPIレスポンスに埋め込む表示名を返す。
// フォーマットは「FirstName + 半角スペース + LastName」で固定。
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
