package vest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AccountExt is the extension of account files found by FindAccounts.
const AccountExt = ".vst"

// FindAccounts discovers and loads the account files under path.
//
// An account name is the file path relative to path, without the extension.
// A non empty query only loads the account of that name.
func FindAccounts(path, query string, opts ...Option) ([]*Account, error) {
	paths, err := findAccountPaths(path, query)
	if err != nil {
		return nil, err
	}
	var accounts []*Account
	for _, p := range paths {
		a, err := loadAccountFile(path, p, opts...)
		if err != nil {
			// fail fast, a partial book is misleading
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if query != "" && len(accounts) == 0 {
		return nil, fmt.Errorf("could not find account %q in %s", query, path)
	}
	return accounts, nil
}

// LoadAccount opens and decodes a single account file. An empty name defaults
// to the file base name.
func LoadAccount(file, name string, opts ...Option) (*Account, error) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), AccountExt)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("could not open account file %q: %w", file, err)
	}
	defer f.Close()

	a, err := DecodeAccount(f, name, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not decode account file %q: %w", file, err)
	}
	return a, nil
}

func loadAccountFile(root, file string, opts ...Option) (*Account, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return nil, fmt.Errorf("could not determine relative path for %q: %w", file, err)
	}
	return LoadAccount(file, strings.TrimSuffix(filepath.ToSlash(rel), AccountExt), opts...)
}

// SaveAccount writes the account to a new file. It never overwrites an
// existing file.
func SaveAccount(file string, a *Account) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("could not create directory for account %q: %w", file, err)
	}
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: account file %q already exists", ErrInvalidInput, file)
	}
	if err != nil {
		return fmt.Errorf("error opening account file %q for writing: %w", file, err)
	}
	if err := EncodeAccount(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// findAccountPaths returns the account files under path matching query.
func findAccountPaths(path, query string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, AccountExt) {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		if name := strings.TrimSuffix(filepath.ToSlash(rel), AccountExt); query == "" || name == query {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
