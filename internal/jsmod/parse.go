package jsmod

import (
	"strings"

	esbuild_config "github.com/ije/esbuild-internal/config"
	"github.com/ije/esbuild-internal/js_ast"
	"github.com/ije/esbuild-internal/js_parser"
	"github.com/ije/esbuild-internal/logger"

	"github.com/esm-dev/breakcheck/internal/bcerr"
)

func parseModule(path string, src []byte) (js_ast.AST, error) {
	parserOpts := js_parser.OptionsFromConfig(&esbuild_config.Options{
		JSX: esbuild_config.JSXOptions{
			Parse: endsWithAny(path, ".jsx", ".tsx"),
		},
		TS: esbuild_config.TSOptions{
			Parse: endsWithAny(path, ".ts", ".mts", ".cts", ".tsx"),
		},
	})

	log := logger.NewDeferLog(logger.DeferLogNoVerboseOrDebug, nil)
	ast, ok := js_parser.Parse(log, logger.Source{
		Index:          0,
		KeyPath:        logger.Path{Text: path},
		PrettyPath:     path,
		Contents:       string(src),
		IdentifierName: "module",
	}, parserOpts)
	if !ok {
		return ast, &bcerr.ParseFailure{File: path, Msg: firstErrorText(log)}
	}
	return ast, nil
}

func firstErrorText(log logger.Log) string {
	for _, msg := range log.Done() {
		if msg.Kind == logger.Error {
			return msg.Data.Text
		}
	}
	return "invalid syntax, require javascript/typescript"
}

func endsWithAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
