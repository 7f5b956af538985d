// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer は投稿された作品本文・コメント本文のHTMLをサニタイズし、
// XSSなどのリスクから閲覧者を保護する。bluemondayの許可リストベースの
// ポリシーで、安全なタグのみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer はHTMLコンテンツのサニタイズ機能のインターフェース。
// 作品・コメントの保存前に必ず適用する。
type ContentSanitizer interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを
	// 通過させ、script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。同一入力には常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// bodySanitizer はContentSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type bodySanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerの新しいインスタンスを生成する。
// 短文作品向けのポリシーのため、画像や埋め込みは許可しない。
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em
//   - aタグ: href属性のみ許可、相対URL不許可、target="_blank"とrel="noopener noreferrer"を強制付与
//   - script, iframe, style等は許可リストに含めないことで自動的に除去される
func NewContentSanitizer() *bodySanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &bodySanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *bodySanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
