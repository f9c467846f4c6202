package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const errorBodyLimit = 4 << 10

// HTTPConverter はHTTP APIとして公開された変換サービスを呼び出します。
// POST {baseURL}/convert に Request をJSONで送信し、Document を受け取ります。
type HTTPConverter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPConverter は HTTPConverter を作成します。
func NewHTTPConverter(baseURL string, timeout time.Duration) (*HTTPConverter, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL is required")
	}
	return &HTTPConverter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Convert は変換サービスを呼び出し、応答をデコードして返します。
func (c *HTTPConverter) Convert(ctx context.Context, req Request) (*Document, error) {
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

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal convert request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build convert request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newError("CONVERT_TIMEOUT", "変換処理が制限時間内に完了しませんでした。", ctx.Err())
		}
		return nil, newError("CONVERTER_UNREACHABLE", "変換サービスに接続できませんでした。", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError("CONVERT_FAILED",
			fmt.Sprintf("変換サービスがエラーを返しました (status=%d): %s", resp.StatusCode, readErrorMessage(resp.Body)), nil)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, newError("CONVERT_FAILED", "変換サービスの応答を解釈できませんでした。", err)
	}
	return &doc, nil
}

// readErrorMessage はエラー応答から message を取り出します。
// JSONでない応答は本文の先頭をそのまま返します。
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	if err != nil || len(data) == 0 {
		return "(本文なし)"
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
