/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cppre

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestPreprocessEndToEnd(t *testing.T) {
	dir := t.TempDir()
	header := "#ifndef GUARD_H\n#define GUARD_H\nint shared_decl;\n#endif\n"
	if err := os.WriteFile(filepath.Join(dir, "shared.h"), []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}

	src := "#include \"shared.h\"\n" +
		"#define GREETING(name) \"hi \" name\n" +
		"#ifdef VERBOSE\n" +
		"msg = GREETING(\"world\");\n" +
		"#endif\n"

	mainPath := filepath.Join(dir, "main.c")
	sink := &CollectingSink{}
	results, err := Preprocess(strings.NewReader(src), mainPath, nil, sink)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}

	var cfgs []string
	for cfg := range results {
		cfgs = append(cfgs, cfg)
	}
	sort.Strings(cfgs)
	if joined := strings.Join(cfgs, ","); joined != ",VERBOSE" {
		t.Fatalf("got configs %v, want [\"\", \"VERBOSE\"]", cfgs)
	}

	if !strings.Contains(results[""], "int shared_decl;") {
		t.Errorf("baseline result = %q, want the included header's declaration", results[""])
	}
	if strings.Contains(results[""], "msg =") {
		t.Errorf("baseline result = %q, should not contain the VERBOSE-guarded line", results[""])
	}

	if !strings.Contains(results["VERBOSE"], `msg = "hi ""world";`) {
		t.Errorf("VERBOSE result = %q, want the macro-expanded message", results["VERBOSE"])
	}

	if len(sink.Messages) != 0 {
		t.Errorf("expected no diagnostics, got %+v", sink.Messages)
	}
}
