package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestResolveIDs(t *testing.T) {
	dir := t.TempDir()
	idsFile := filepath.Join(dir, "ids.txt")
	content := "# favourites\n2767052\n\n  6148028  \n"
	if err := os.WriteFile(idsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write ids file: %v", err)
	}

	tests := []struct {
		name    string
		idsArg  string
		idsFile string
		want    []string
		wantErr string
	}{
		{
			name:   "comma separated",
			idsArg: "1, 2,,3",
			want:   []string{"1", "2", "3"},
		},
		{
			name:    "file lines with comments",
			idsFile: idsFile,
			want:    []string{"2767052", "6148028"},
		},
		{
			name:    "both sources merge",
			idsArg:  "5107",
			idsFile: idsFile,
			want:    []string{"5107", "2767052", "6148028"},
		},
		{
			name:    "no sources",
			wantErr: "no book ids",
		},
		{
			name:    "missing file",
			idsFile: filepath.Join(dir, "absent.txt"),
			wantErr: "read ids file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveIDs(tt.idsArg, tt.idsFile)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveIDs: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]string{"title": "The Road"}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	want := "{\n  \"title\": \"The Road\"\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("printJSON output = %q, want %q", got, want)
	}
}
