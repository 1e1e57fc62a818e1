package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MarkupStripper はHTML断片からタグを取り除き、プレーンテキストを返す。
// フィードやHTMLページから抜き出したタイトルの整形に使う。
type MarkupStripper struct {
	policy *bluemonday.Policy
}

// NewMarkupStripper はMarkupStripperの新しいインスタンスを生成する。
// 除去したタグの位置には空白を挿入し、隣接する単語が連結されないようにする。
func NewMarkupStripper() *MarkupStripper {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return &MarkupStripper{policy: p}
}

// Strip はタグを除去し、文字参照をデコードし、連続する空白を1つにまとめる。
func (s *MarkupStripper) Strip(raw string) string {
	text := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Join(strings.Fields(text), " ")
}
