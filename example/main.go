// This example rewrites every module named on the command line and writes
// each result next to its input with a ".cjs" extension. It shows how to
// use the api package directly instead of going through the CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esm2cjs/esm2cjs/pkg/api"
)

func main() {
	failed := false
	for _, path := range os.Args[1:] {
		if err := rewrite(path); err != nil {
			fmt.Println("[ERROR] ", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func rewrite(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result := api.Transform(string(contents), api.TransformOptions{
		Sourcefile: path,
		Comments:   true,
	})
	for _, warn := range result.Warnings {
		fmt.Println("[WARN] ", warn.Text)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %s", path, result.Errors[0].Text)
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".cjs"
	if err := os.WriteFile(outPath, []byte(result.Code), 0644); err != nil {
		return err
	}
	fmt.Printf("%s -> %s (requires %s)\n", path, outPath, strings.Join(result.Dependencies, ", "))
	return nil
}
