package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arloliu/go-vinculum/vinculum"
	"github.com/arloliu/go-vinculum/vinculumtest"
)

func dispatch(ctx context.Context, s *vinculum.Session, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "probe":
		return probe(ctx, s, args, stdout)
	case "size":
		return size(ctx, s, args, stdout)
	case "stat":
		return stat(ctx, s, args, stdout)
	case "get":
		return get(ctx, s, args, stdout)
	case "put":
		return put(ctx, s, args, stdout)
	case "cd":
		return cd(ctx, s, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func wantArgs(cmd string, args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: %s takes %d to %d arguments, got %d", errUsage, cmd, lo, hi, len(args))
	}

	return nil
}

func probe(ctx context.Context, s *vinculum.Session, args []string, stdout io.Writer) error {
	if err := wantArgs("probe", args, 0, 0); err != nil {
		return err
	}
	if err := s.DetectMedia(ctx); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "media present")

	return nil
}

func size(ctx context.Context, s *vinculum.Session, args []string, stdout io.Writer) error {
	if err := wantArgs("size", args, 1, 1); err != nil {
		return err
	}

	n, err := s.FileSize(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, n)

	return nil
}

func stat(ctx context.Context, s *vinculum.Session, args []string, stdout io.Writer) error {
	if err := wantArgs("stat", args, 1, 1); err != nil {
		return err
	}

	n, err := s.FileSize(ctx, args[0])
	if err != nil {
		return err
	}
	ts, err := s.FileDate(ctx, args[0])
	if err != nil {
		return err
	}

	mod := "-"
	if t := ts.In(time.Local); !t.IsZero() {
		mod = t.Format(time.DateTime)
	}
	fmt.Fprintf(stdout, "%s\t%d\t%s\n", strings.ToUpper(args[0]), n, mod)

	return nil
}

func get(ctx context.Context, s *vinculum.Session, args []string, stdout io.Writer) error {
	if err := wantArgs("get", args, 1, 2); err != nil {
		return err
	}

	local := filepath.Base(args[0])
	if len(args) == 2 {
		local = args[1]
	}

	f, err := os.Create(local)
	if err != nil {
		return err
	}

	n, err := s.ReadFile(ctx, args[0], f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// no partial or empty copies
		_ = os.Remove(local)
		return err
	}
	fmt.Fprintf(stdout, "%s -> %s (%d bytes)\n", args[0], local, n)

	return nil
}

func put(ctx context.Context, s *vinculum.Session, args []string, stdout io.Writer) error {
	if err := wantArgs("put", args, 1, 2); err != nil {
		return err
	}

	remote := strings.ToUpper(filepath.Base(args[0]))
	if len(args) == 2 {
		remote = args[1]
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	n, err := s.WriteFile(ctx, remote, f, info.ModTime())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s -> %s (%d bytes)\n", args[0], remote, n)

	return nil
}

// cd walks a slash separated path one level at a time. A leading slash
// starts from the root.
func cd(ctx context.Context, s *vinculum.Session, args []string) error {
	if err := wantArgs("cd", args, 1, 1); err != nil {
		return err
	}

	path := args[0]
	if strings.HasPrefix(path, "/") {
		if err := s.ChangeDirRoot(ctx); err != nil {
			return err
		}
	}

	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		var err error
		switch part {
		case "", ".":
			continue
		case "..":
			err = s.ChangeDirUp(ctx)
		default:
			err = s.ChangeDir(ctx, part)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// newSimAgent returns a simulated controller with a small sample drive.
func newSimAgent() *vinculumtest.Agent {
	a := vinculumtest.NewAgent()
	mod := time.Date(2008, time.May, 1, 9, 30, 0, 0, time.Local)
	a.AddFile("README.TXT", []byte("Vinculum simulated drive.\r\n"), mod)
	a.AddFile("LOGS/BOOT.LOG", []byte("ok\r\n"), mod)

	return a
}
