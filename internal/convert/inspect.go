package convert

import (
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// Inspector は変換実行前にローカルの変換元ファイルを検査します。
// URL指定の変換元は変換器側で取得されるため検査の対象外です。
type Inspector struct {
	maxSize  int64
	maxPages int
}

// NewInspector は Inspector を作成します。0以下の上限は無制限として扱われます。
func NewInspector(maxSize int64, maxPages int) *Inspector {
	return &Inspector{
		maxSize:  maxSize,
		maxPages: maxPages,
	}
}

// Inspect は変換元のサイズ・形式と、PDFの場合はページ範囲の整合性を検査します。
func (i *Inspector) Inspect(req Request) error {
	if req.PageRange != nil {
		if err := req.PageRange.Validate(); err != nil {
			return err
		}
	}
	if isRemoteSource(req.Source) {
		return nil
	}

	info, err := os.Stat(req.Source)
	if err != nil {
		return newError("SOURCE_NOT_FOUND", "変換元ファイルが見つかりません。", err)
	}
	if info.IsDir() {
		return newError("INVALID_INPUT", "変換元にディレクトリは指定できません。", nil)
	}
	if i.maxSize > 0 && info.Size() > i.maxSize {
		return newError("LIMIT_EXCEEDED", "変換元ファイルがサイズ上限を超えています。", nil)
	}

	mtype, err := mimetype.DetectFile(req.Source)
	if err != nil {
		return newError("INVALID_INPUT", "変換元ファイルの形式を判定できませんでした。", err)
	}
	if !mtype.Is("application/pdf") {
		// PDF以外はページ数を検査できないため変換器側の判断に委ねる
		return nil
	}

	pages, err := pdfapi.PageCountFile(req.Source)
	if err != nil {
		return newError("UNSUPPORTED_PDF", "PDFの解析に失敗しました。ファイルが破損していないか確認してください。", err)
	}
	if i.maxPages > 0 && pages > i.maxPages {
		return newError("LIMIT_EXCEEDED", "変換元PDFがページ数上限を超えています。", nil)
	}
	if req.PageRange != nil && req.PageRange.End > pages {
		return newError("INVALID_INPUT", "pageRange がPDFのページ数を超えています。", nil)
	}
	return nil
}

func isRemoteSource(source string) bool {
	source = strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
