package convert

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

const (
	placeholderSource = "{source}"
	placeholderPages  = "{pages}"

	stderrSnippetLimit = 500
)

// CommandConverter は外部コマンドとして変換器を実行します。
// 引数内の {source} は変換元に、{pages} は "start-end" 形式のページ範囲に
// 置換されます。{pages} を含む引数は、範囲未指定のとき丸ごと取り除かれます。
// 標準出力がエクスポート済みテキストになります。
type CommandConverter struct {
	command string
	args    []string
}

// NewCommandConverter は CommandConverter を作成します。
func NewCommandConverter(command string, args []string) (*CommandConverter, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("command is required")
	}
	return &CommandConverter{
		command: command,
		args:    append([]string(nil), args...),
	}, nil
}

// Convert は変換コマンドを実行し、標準出力を結果テキストとして返します。
func (c *CommandConverter) Convert(ctx context.Context, req Request) (*Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.Source) == "" {
		return nil, newError("INVALID_INPUT", "変換元 source を指定してください。", nil)
	}
	if req.PageRange != nil {
		if err := req.PageRange.Validate(); err != nil {
			return nil, err
		}
	}

	args := c.buildArgs(req)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, newError("CONVERT_TIMEOUT", "変換処理が制限時間内に完了しませんでした。", ctx.Err())
		}
		return nil, newError("CONVERT_FAILED",
			"変換コマンドの実行に失敗しました: "+stderrSnippet(&stderr), err)
	}

	return &Document{Text: stdout.String()}, nil
}

func (c *CommandConverter) buildArgs(req Request) []string {
	args := make([]string, 0, len(c.args))
	for _, arg := range c.args {
		if strings.Contains(arg, placeholderPages) {
			if req.PageRange == nil {
				continue
			}
			arg = strings.ReplaceAll(arg, placeholderPages, req.PageRange.String())
		}
		arg = strings.ReplaceAll(arg, placeholderSource, req.Source)
		args = append(args, arg)
	}
	return args
}

func stderrSnippet(buf *bytes.Buffer) string {
	snippet := strings.TrimSpace(buf.String())
	if snippet == "" {
		return "(標準エラー出力なし)"
	}
	if len(snippet) > stderrSnippetLimit {
		snippet = snippet[:stderrSnippetLimit]
	}
	return snippet
}
