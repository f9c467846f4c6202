// Package convert は外部のドキュメント変換コラボレーターとの境界を提供します。
// 変換アルゴリズムそのものは本パッケージの対象外で、外部コマンドまたは
// HTTPサービスとして実行されます。
package convert

import (
	"context"
	"fmt"
)

// PageRange は変換対象のページ範囲を表します（Start/Endは1-based, End>=Start）。
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate はページ範囲の妥当性を検証します。
func (r PageRange) Validate() error {
	if r.Start < 1 {
		return newError("INVALID_INPUT", "pageRange.start は1以上を指定してください。", nil)
	}
	if r.End < r.Start {
		return newError("INVALID_INPUT", "pageRange.end は start 以上を指定してください。", nil)
	}
	return nil
}

// String は "start-end" 形式の文字列を返します。
func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Request は1回の変換依頼を表します。PageRange が nil の場合は全ページが対象です。
type Request struct {
	Source    string     `json:"source"`
	PageRange *PageRange `json:"pageRange,omitempty"`
}

// Document は変換結果を表します。Text はエクスポート済みのテキストです。
type Document struct {
	Text  string `json:"text"`
	Pages int    `json:"pages,omitempty"`
}

// Converter は外部の変換処理を実装します。失敗は *Error として返します。
type Converter interface {
	Convert(ctx context.Context, req Request) (*Document, error)
}
