// Package model はドメインモデルを定義する。
package model

import "time"

// ContentKind は作品の種別を表す。
// StoryとWritingは構造的に同一で、種別タグのみが異なる。
type ContentKind string

const (
	// ContentKindStory はストーリー作品。
	ContentKindStory ContentKind = "story"
	// ContentKindWriting はライティング作品。
	ContentKindWriting ContentKind = "writing"
)

// Valid は既知の種別かどうかを返す。
func (k ContentKind) Valid() bool {
	return k == ContentKindStory || k == ContentKindWriting
}

// ContentItem は公開された作品（Story/Writing）を表す。
// UserIDは作成時に解決された投稿者への参照で、作成後は変更されない。
// Updatedは一度も更新されていない場合nil。
type ContentItem struct {
	ID      string
	Kind    ContentKind
	Title   string
	Content string
	UserID  string
	Posted  time.Time
	Updated *time.Time
}

// ContentWithOwner は作品と投稿者情報をJOINして取得した読み取り用モデル。
// シリアライズには投稿者の表示名が必須のため、読み取り経路では常にこの型を使う。
type ContentWithOwner struct {
	ContentItem
	Owner User
}
