package preprocessor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpandMacrosObjectLike(t *testing.T) {
	got := ExpandMacros("#define FOO 42\nx = FOO;\n", "t.c", nil)
	want := "\nx = 42;\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosTokenPaste(t *testing.T) {
	got := ExpandMacros("#define CONCAT(a,b) a##b\nCONCAT(foo,bar)\n", "t.c", nil)
	if diff := cmp.Diff("\nfoobar\n", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosStringify(t *testing.T) {
	got := ExpandMacros("#define S(x) #x\nS(abc)\n", "t.c", nil)
	if diff := cmp.Diff(`"abc"`+"\n", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosFunctionLike(t *testing.T) {
	got := ExpandMacros("#define SQ(x) ((x)*(x))\nSQ(1+2)\n", "t.c", nil)
	if diff := cmp.Diff("\n((1+2)*(1+2))\n", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosVariadicCommaSuppression(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "empty variadic tail drops the comma",
			code: `#define LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)` + "\n" + `LOG("hi")` + "\n",
			want: "\n" + `printf("hi")` + "\n",
		},
		{
			name: "non-empty variadic tail keeps the comma",
			code: `#define LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)` + "\n" + `LOG("%d", 7)` + "\n",
			want: `printf("%d",7)` + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandMacros(tt.code, "t.c", nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandMacros(%q) mismatch (-want +got):\n%s", tt.code, diff)
			}
		})
	}
}

func TestExpandMacrosSelfShadowingStop(t *testing.T) {
	got := ExpandMacros("#define X 1\nX\n#undef X\nX\n", "t.c", nil)
	want := "\n1\n\nX\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosArityMismatchLeavesCallUnexpanded(t *testing.T) {
	got := ExpandMacros("#define F(a,b) a+b\nF(1)\n", "t.c", nil)
	want := "\nF(1)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosZeroParameterDefineActsObjectLike(t *testing.T) {
	got := ExpandMacros("#define F() x\nF()\n", "t.c", nil)
	want := "\nx()\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosIdempotentWithoutDefine(t *testing.T) {
	code := "int x = 1;\nint y = call(x, 2);\n"
	got := ExpandMacros(code, "t.c", nil)
	if diff := cmp.Diff(code, got); diff != "" {
		t.Errorf("ExpandMacros should be a no-op without #define (-want +got):\n%s", diff)
	}
}

func TestExpandMacrosUnterminatedLiteralReportsAndEmpties(t *testing.T) {
	sink := &CollectingSink{}
	got := ExpandMacros("#define X 1\n\"unterminated\n", "bad.c", sink)
	if got != "" {
		t.Errorf("ExpandMacros should return \"\" on an unterminated literal, got %q", got)
	}
	if len(sink.Messages) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %+v", len(sink.Messages), sink.Messages)
	}
	if sink.Messages[0].ID != NoQuoteCharPair {
		t.Errorf("diagnostic ID = %q, want %q", sink.Messages[0].ID, NoQuoteCharPair)
	}
}

func TestParseDefine(t *testing.T) {
	tests := []struct {
		name             string
		rest             string
		wantName         string
		wantParams       []string
		wantVariadic     bool
		wantBody         string
		wantFunctionLike bool
		wantOK           bool
	}{
		{
			name:     "object-like",
			rest:     "FOO 42",
			wantName: "FOO", wantBody: "42", wantOK: true,
		},
		{
			name:             "function-like with plain params",
			rest:             "SQ(x) ((x)*(x))",
			wantName:         "SQ",
			wantParams:       []string{"x"},
			wantBody:         "((x)*(x))",
			wantFunctionLike: true,
			wantOK:           true,
		},
		{
			name:             "bare ellipsis synthesizes __VA_ARGS__",
			rest:             "LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)",
			wantName:         "LOG",
			wantParams:       []string{"fmt", "__VA_ARGS__"},
			wantVariadic:     true,
			wantBody:         "printf(fmt, ##__VA_ARGS__)",
			wantFunctionLike: true,
			wantOK:           true,
		},
		{
			name:             "gnu-style named variadic tail",
			rest:             "LOG(fmt, args...) printf(fmt, args)",
			wantName:         "LOG",
			wantParams:       []string{"fmt", "args"},
			wantVariadic:     true,
			wantBody:         "printf(fmt, args)",
			wantFunctionLike: true,
			wantOK:           true,
		},
		{
			name:     "empty parameter list is treated as object-like",
			rest:     "F() x",
			wantName: "F", wantBody: "x", wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, params, variadic, body, functionLike, ok := parseDefine(tt.rest)
			if name != tt.wantName || variadic != tt.wantVariadic || body != tt.wantBody ||
				functionLike != tt.wantFunctionLike || ok != tt.wantOK {
				t.Errorf("parseDefine(%q) = (%q, %v, %v, %q, %v, %v)", tt.rest, name, params, variadic, body, functionLike, ok)
			}
			if diff := cmp.Diff(tt.wantParams, params); diff != "" {
				t.Errorf("parseDefine(%q) params mismatch (-want +got):\n%s", tt.rest, diff)
			}
		})
	}
}
