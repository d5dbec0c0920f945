package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists one normalized article record per file under
// <root>/<source>/year=<YYYY>/<slug>-<id>.json.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("corpus root is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create corpus root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Put writes the article record, overwriting any previous version.
func (s *Store) Put(a Article) error {
	if a.ID == "" {
		return fmt.Errorf("article has no ID")
	}
	dir := filepath.Join(s.root, string(a.Source), fmt.Sprintf("year=%d", a.Year()))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create corpus partition: %w", err)
	}

	stem := Slugify(a.Title)
	if stem == "untitled" {
		stem = Slugify(a.URL)
	}
	idSuffix := a.ID
	if len(idSuffix) > 8 {
		idSuffix = idSuffix[:8]
	}
	target := filepath.Join(dir, fmt.Sprintf("%s-%s.json", stem, idSuffix))

	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("stage article write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write article: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close article write: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit article write: %w", err)
	}
	return nil
}

// LoadSource reads every article record for one source across all years.
func (s *Store) LoadSource(source Source) ([]Article, error) {
	base := filepath.Join(s.root, string(source))
	var articles []Article
	err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read article %s: %w", path, err)
		}
		var a Article
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("decode article %s: %w", path, err)
		}
		articles = append(articles, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	return articles, nil
}

// PutIssue writes one issue record, overwriting any previous version.
func (s *Store) PutIssue(issue Issue) error {
	if issue.IssueDate.IsZero() {
		return fmt.Errorf("issue has no date")
	}
	dir := filepath.Join(s.root, "issues", fmt.Sprintf("year=%d", issue.Year))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create issue partition: %w", err)
	}
	target := filepath.Join(dir, issue.IssueDate.Format("2006-01-02")+".json")

	payload, err := json.MarshalIndent(issue, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal issue: %w", err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o640); err != nil {
		return fmt.Errorf("write issue: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit issue write: %w", err)
	}
	return nil
}

// LoadIssues reads every stored issue across all years.
func (s *Store) LoadIssues() ([]Issue, error) {
	base := filepath.Join(s.root, "issues")
	var issues []Issue
	err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read issue %s: %w", path, err)
		}
		var issue Issue
		if err := json.Unmarshal(raw, &issue); err != nil {
			return fmt.Errorf("decode issue %s: %w", path, err)
		}
		issues = append(issues, issue)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan issues: %w", err)
	}
	return issues, nil
}

// LoadAll reads the whole corpus, magazine first.
func (s *Store) LoadAll() ([]Article, error) {
	var all []Article
	for _, source := range []Source{SourceMagazine, SourceWeb} {
		articles, err := s.LoadSource(source)
		if err != nil {
			return nil, err
		}
		all = append(all, articles...)
	}
	return all, nil
}
