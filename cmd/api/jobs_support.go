package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/shlex"

	"github.com/yourusername/doc-forge/internal/config"
	"github.com/yourusername/doc-forge/internal/convert"
	"github.com/yourusername/doc-forge/internal/jobs"
)

// setupJobs はストア・変換器・ワーカープールを組み立てます。
func setupJobs(cfg *config.Config) (*jobs.Manager, error) {
	converter, err := buildConverter(cfg)
	if err != nil {
		return nil, err
	}

	inspector := convert.NewInspector(cfg.MaxSourceSize, cfg.MaxPages)
	store := jobs.NewStore()

	return jobs.NewManager(cfg, store, converter, inspector, log.Default())
}

// buildConverter は設定に応じて変換器アダプターを選択します。
func buildConverter(cfg *config.Config) (convert.Converter, error) {
	switch {
	case cfg.ConverterURL != "":
		timeout := time.Duration(cfg.ConvertTimeoutSeconds) * time.Second
		return convert.NewHTTPConverter(cfg.ConverterURL, timeout)
	case cfg.ConverterCommand != "":
		args, err := splitConverterArgs(cfg.ConverterArgs)
		if err != nil {
			return nil, err
		}
		return convert.NewCommandConverter(cfg.ConverterCommand, args)
	default:
		return nil, errors.New("CONVERTER_URL または CONVERTER_CMD を設定してください")
	}
}

// splitConverterArgs は CONVERTER_ARGS をシェル風に分割します。
// 空白を含むパスはクォートで1引数として指定できます。
func splitConverterArgs(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("CONVERTER_ARGS の解釈に失敗しました: %w", err)
	}
	return args, nil
}
