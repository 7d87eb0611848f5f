package itemgraph

import (
	"errors"
	"strings"

	"github.com/reoring/itemgraph/codec"
	"github.com/reoring/itemgraph/i18n"
)

// pointer renders an item path ("a__b__c") as a JSON Pointer ("/a/b/c").
func pointer(path string) string {
	if path == "" {
		return "/"
	}
	return "/" + strings.ReplaceAll(path, PathSeparator, "/")
}

// issueAt creates a single-issue error at the given item path.
func issueAt(path, code, msg string, params map[string]any) Issues {
	return Issues{{Path: pointer(path), Code: code, Message: msg, Params: params}}
}

// codecIssue lifts a codec error into Issues, keeping it as the cause.
func codecIssue(path string, err error) Issues {
	code := CodeInvalidType
	if errors.Is(err, codec.ErrInvalidFormat) {
		code = CodeInvalidFormat
	}
	msg := i18n.T(code, map[string]string{"detail": err.Error()})
	return Issues{{Path: pointer(path), Code: code, Message: msg, Cause: err}}
}

// prefixIssues re-roots issue paths under prefix.
func prefixIssues(prefix string, err error) error {
	iss, ok := AsIssues(err)
	if !ok || prefix == "" {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "/" {
			it.Path = pointer(prefix)
		} else {
			it.Path = pointer(prefix) + it.Path
		}
		out[i] = it
	}
	return out
}
