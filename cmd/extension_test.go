package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunExtension(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	script := "#!/bin/sh\necho \"$" + EnvCommission + " $1\" > " + out + "\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, "vst-hello"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	withFlags(t, "", "", "IB")

	found, code := RunExtension("hello", []string{"world"})
	if !found {
		t.Fatal("RunExtension() did not find vst-hello")
	}
	if code != 3 {
		t.Errorf("RunExtension() exit code = %d, want 3", code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "IB world\n" {
		t.Errorf("extension saw %q, want %q", got, "IB world\n")
	}

	if found, _ := RunExtension("missing", nil); found {
		t.Error("RunExtension(missing) found an extension")
	}
}
