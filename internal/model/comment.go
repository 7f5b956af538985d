// Package model はドメインモデルを定義する。
package model

import "time"

// Comment は作品に付けられたコメントを表す。
// TargetIDはStoryまたはWritingのいずれか一方を指す。
// 作成後は不変（更新エンドポイントは存在しない）。
type Comment struct {
	ID        string
	Content   string
	UserID    string
	TargetID  string
	Commented time.Time
}

// CommentWithOwner はコメントと投稿者情報をJOINして取得した読み取り用モデル。
type CommentWithOwner struct {
	Comment
	Owner User
}
