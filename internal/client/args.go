package client

import (
	"fmt"
	"os"
	"path/filepath"
)

type ValidationError struct {
	Arg   string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Cause)
}

// ParsedPath is a local file accepted for upload.
type ParsedPath struct {
	FullPath string
	Name     string
	Size     int64
}

// ParseArgs validates upload arguments. Only regular files are accepted;
// the server stores files flat, so directories cannot be sent.
func ParseArgs(args []string) ([]ParsedPath, error) {
	if len(args) == 0 {
		return nil, &ValidationError{Arg: "<files>", Cause: "no files provided"}
	}

	var out []ParsedPath
	seen := make(map[string]string)

	for _, raw := range args {
		p := filepath.Clean(raw)
		info, err := os.Stat(p)
		if err != nil {
			return nil, &ValidationError{Arg: raw, Cause: "not found or not accessible"}
		}
		if info.IsDir() {
			return nil, &ValidationError{Arg: raw, Cause: "is a directory"}
		}
		if !info.Mode().IsRegular() {
			return nil, &ValidationError{Arg: raw, Cause: "not a regular file"}
		}

		name := filepath.Base(p)
		if prev, ok := seen[name]; ok {
			return nil, &ValidationError{Arg: raw, Cause: fmt.Sprintf("same name as %s", prev)}
		}
		seen[name] = raw

		out = append(out, ParsedPath{FullPath: p, Name: name, Size: info.Size()})
	}

	return out, nil
}
