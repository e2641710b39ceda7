package gcp

import "testing"

func TestResolveObjectStorageConfigFromEnv(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		host     string
		wantMode ObjectStorageMode
		wantErr  bool
	}{
		{name: "default", wantMode: ObjectStorageModeGCS},
		{name: "emulator host implies emulator", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCSEmulator},
		{name: "explicit gcs wins over host", mode: "gcs", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCS},
		{name: "explicit emulator", mode: "GCS_EMULATOR", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCSEmulator},
		{name: "emulator without host", mode: "gcs_emulator", wantErr: true},
		{name: "emulator with relative host", mode: "gcs_emulator", host: "fake-gcs", wantErr: true},
		{name: "unknown mode", mode: "s3", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.host)
			cfg, err := ResolveObjectStorageConfigFromEnv()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got cfg=%+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
			}
			if cfg.Mode != tc.wantMode {
				t.Fatalf("mode: want=%q got=%q", tc.wantMode, cfg.Mode)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"u/React_study_material.pdf": "application/pdf",
		"u/history.XLSX":             "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"u/cover.png":                "image/png",
		"u/notes.txt":                "text/plain",
		"u/unknown.bin":              "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}

func TestSafeObjectName(t *testing.T) {
	ok := []string{"React_study_material.pdf", "quiz 1.pdf"}
	bad := []string{"", "../x.pdf", "a/b.pdf", "..", "  "}
	for _, name := range ok {
		if !SafeObjectName(name) {
			t.Fatalf("SafeObjectName(%q): want=true", name)
		}
	}
	for _, name := range bad {
		if SafeObjectName(name) {
			t.Fatalf("SafeObjectName(%q): want=false", name)
		}
	}
}
