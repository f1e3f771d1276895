package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "unknown target",
			code:    CodeUnknownTarget,
			wantMsg: "Unknown target",
			wantCat: CategoryTarget,
		},
		{
			name:    "bundler failure",
			code:    CodeBundlerFailed,
			wantMsg: "Bundler failed",
			wantCat: CategoryBuild,
		},
		{
			name:    "config error",
			code:    CodeInvalidConfig,
			wantMsg: "Invalid pkgbuild.json",
			wantCat: CategoryConfig,
		},
		{
			name:    "unregistered code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "pkgbuild.json")
	if err.Message != `file "pkgbuild.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(CodeNoMatch), "E201: No matching target"},
		{"with target", New(CodeUnknownTarget).WithTarget("image"), `E200: Unknown target (target "image")`},
		{"bundler exit", New(CodeBundlerFailed).WithTarget("cli").WithExitCode(2), `E210: Bundler failed (target "cli", exit status 2)`},
		{"no code", &Error{Message: "test error"}, "test error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(CodeBundlerFailed).WithTarget("image").WithExitCode(1)
	wrapped := fmt.Errorf("building: %w", err)

	if !Is(wrapped, ErrBundlerFailed) {
		t.Error("wrapped bundler error should match ErrBundlerFailed")
	}
	if Is(wrapped, ErrNoMatch) {
		t.Error("bundler error should not match ErrNoMatch")
	}
	if Is(&Error{Message: "no code"}, &Error{}) {
		t.Error("errors without codes should never match")
	}

	var e *Error
	if !As(wrapped, &e) || e.Target != "image" {
		t.Errorf("As should recover target, got %+v", e)
	}
}

func TestError_Builders(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	err := New(CodeCleanup).
		WithTarget("image").
		WithDetail("Custom detail").
		WithSuggestion("Check permissions").
		Wrap(inner)

	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "Check permissions" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeArtifact) != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New(CodeNoMatch)
	if FromError(fmt.Errorf("ctx: %w", e), CodeArtifact) != e {
		t.Error("FromError should unwrap to the existing *Error")
	}

	stdErr := fmt.Errorf("plain")
	result := FromError(stdErr, CodeArtifact)
	if result.Wrapped != stdErr || result.Code != CodeArtifact {
		t.Errorf("standard error should be wrapped under %s, got %+v", CodeArtifact, result)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeBundlerFailed).
		WithTarget("image").
		WithExitCode(2).
		WithSuggestion("Run rollup by hand").
		Wrap(fmt.Errorf("exit status 2"))

	formatted := err.Format()

	for _, want := range []string{
		"ERROR E210: Bundler failed",
		"target: image (exit status 2)",
		"Cause: exit status 2",
		"Hint: Run rollup by hand",
		"Learn more: " + docBase + CodeBundlerFailed,
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeUnknownTarget).WithTarget("image")
	want := "image: E200: Unknown target"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	json := New(CodeBundlerFailed).WithTarget("cli").WithExitCode(3).FormatJSON()

	for _, want := range []string{
		`"code":"E210"`,
		`"category":"build"`,
		`"target":"cli"`,
		`"exitCode":3`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("JSON missing %s: %s", want, json)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("outer: %w", New(CodeNoMatch).WithTarget("xyz")))
	if !strings.Contains(buf.String(), "ERROR E201: No matching target") {
		t.Errorf("structured error not formatted: %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("boom"))
	if !strings.Contains(buf.String(), "ERROR: boom") {
		t.Errorf("plain error not formatted: %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Fatalf("GetAllCodes() returned %d codes, want %d", len(codes), len(registry))
	}

	if _, ok := GetTemplate(CodeNoMatch); !ok {
		t.Error("E201 should exist")
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not exist")
	}

	Register("E999", ErrorTemplate{Category: CategoryBuild, Message: "Custom test error"})
	defer delete(registry, "E999")
	if New("E999").Message != "Custom test error" {
		t.Error("registered template not used")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
