package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/outlet-dev/outlet/pkg/router"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "routing error",
			code:    "E001",
			wantMsg: "Duplicate route pattern",
			wantCat: CategoryRouting,
		},
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "cli error",
			code:    "E141",
			wantMsg: "Bucket required",
			wantCat: CategoryCLI,
		},
		{
			name:    "unknown error code",
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

func TestOutletErrorError(t *testing.T) {
	if got, want := New("E003").Error(), "E003: Route not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := stderrors.New("disk full")
	err := New("E100").Wrap(cause)
	if got, want := err.Error(), "E100: Configuration file not readable: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is does not reach the wrapped cause")
	}

	plain := Newf(CategoryCLI, "unknown flag %q", "--x")
	if got, want := plain.Error(), `unknown flag "--x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil) should return nil")
	}

	original := New("E102")
	wrapped := fmt.Errorf("loading: %w", original)
	if FromError(wrapped, "E100") != original {
		t.Error("FromError should return an existing OutletError from the chain")
	}

	got := FromError(stderrors.New("boom"), "E160")
	if got.Code != "E160" || got.Wrapped == nil {
		t.Errorf("FromError() = %+v", got)
	}
}

func TestFromRouterError(t *testing.T) {
	r := router.New()
	r.MustRegister("/jobs", nil, nil)
	_, dupErr := r.Register("/jobs", nil, nil)
	r.Freeze()
	_, frozenErr := r.Register("/late", nil, nil)
	_, notFoundErr := r.Resolve("/nowhere")

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"duplicate", dupErr, "E001"},
		{"frozen", frozenErr, "E004"},
		{"not found", notFoundErr, "E003"},
		{"missing outlet", router.ErrMissingOutlet, "E005"},
		{"render", &router.RenderError{Pattern: "/x", Panic: "boom"}, "E006"},
		{"foreign parent", router.ErrForeignParent, "E007"},
		{"other", stderrors.New("other"), "E006"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("setup produced no error")
			}
			got := FromRouterError(tt.err)
			if got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("mapped error does not wrap the original")
			}
		})
	}

	if FromRouterError(nil) != nil {
		t.Error("FromRouterError(nil) should return nil")
	}
	if got := FromRouterError(&router.PatternError{Pattern: "/$", Reason: "bad"}); got.Code != "E002" {
		t.Errorf("pattern error code = %s, want E002", got.Code)
	}
}

func TestWithLocationReadsContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outlet.json")
	content := "{\n  \"server\": {\n    \"addr\": \":8080\",\n  }\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("E101").WithLocation(path, 3, 19).WithSuggestion("Remove the trailing comma")
	if len(err.Context) != 5 || err.ContextStart != 1 {
		t.Fatalf("Context = %d lines from %d, want 5 from 1", len(err.Context), err.ContextStart)
	}

	out := err.Format()
	for _, want := range []string{"ERROR E101: Invalid configuration file", path + ":3:19", `"addr": ":8080",`, "Hint: Remove the trailing comma", "^"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() must not emit color escapes")
	}
}

func TestContextNearFileStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outlet.json")
	if err := os.WriteFile(path, []byte("{\n  \"log\": 1\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := New("E101").WithLocation(path, 2, 10)
	if err.ContextStart != 1 || len(err.Context) != 3 {
		t.Fatalf("Context = %q from %d", err.Context, err.ContextStart)
	}
	if !strings.Contains(err.Format(), "→    2 │   \"log\": 1") {
		t.Errorf("marker not on line 2:\n%s", err.Format())
	}
}

func TestPrinter(t *testing.T) {
	coded := New("E141").WithSuggestion("pass --bucket")
	coded.Location = &Location{File: "outlet.json", Line: 7}
	plain := stderrors.New("unknown flag: --x")

	tests := []struct {
		name    string
		printer Printer
		err     error
		want    []string
		reject  []string
	}{
		{
			name:    "text without color",
			printer: Printer{Mode: ModeText},
			err:     coded,
			want:    []string{"ERROR E141: Bucket required", "outlet.json:7", "Hint: pass --bucket"},
			reject:  []string{"\033["},
		},
		{
			name:    "text with color",
			printer: Printer{Mode: ModeText, Color: true},
			err:     coded,
			want:    []string{"\033[1m\033[31mERROR E141:\033[0m"},
		},
		{
			name:    "compact",
			printer: Printer{Mode: ModeCompact},
			err:     coded,
			want:    []string{"outlet.json:7: E141: Bucket required\n"},
		},
		{
			name:    "compact uncoded",
			printer: Printer{Mode: ModeCompact},
			err:     plain,
			want:    []string{"E143: Command failed: unknown flag: --x\n"},
		},
		{
			name:    "json",
			printer: Printer{Mode: ModeJSON},
			err:     fmt.Errorf("publish: %w", coded),
			want:    []string{`"code":"E141"`, `"suggestion":"pass --bucket"`, `"location":{"File":"outlet.json"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			tt.printer.Print(&b, tt.err)
			out := b.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, bad := range tt.reject {
				if strings.Contains(out, bad) {
					t.Errorf("output contains %q:\n%s", bad, out)
				}
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"text", "Compact", "JSON"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) error = %v", s, err)
		}
	}
	if _, err := ParseMode("xml"); err == nil {
		t.Error("ParseMode(xml) should fail")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E102")
	err.Location = &Location{File: "outlet.json", Line: 2}
	if got, want := err.FormatCompact(), "outlet.json:2: E102: Invalid configuration value"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("E141").WithSuggestion("pass --bucket")
	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("Marshal() error = %v", jerr)
	}
	var got map[string]any
	if jerr := json.Unmarshal(data, &got); jerr != nil {
		t.Fatal(jerr)
	}
	if got["code"] != "E141" || got["category"] != "cli" || got["suggestion"] != "pass --bucket" {
		t.Errorf("JSON = %s", data)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistryCodes(t *testing.T) {
	codes := GetAllCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("GetAllCodes() not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s = %+v, %v", code, tmpl, ok)
		}
	}
	if _, ok := GetTemplate("e140"); !ok {
		t.Error("GetTemplate should ignore case")
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Error("GetTemplate(E999) should not exist")
	}
}
