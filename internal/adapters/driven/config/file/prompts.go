package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure PromptStore implements the interfaces.
var (
	_ driven.PromptStore   = (*PromptStore)(nil)
	_ driven.PromptWatcher = (*PromptStore)(nil)
)

const promptExt = ".txt"

// PromptStore loads mode instructions from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnalyzer: `You are a code analyzer AI. Analyse the structure, purpose and functionality of the project.
Explain how its components interact, describe the overall architecture and give insight into its design.
Use the documents provided and be comprehensive.

Relevant context: {context}

Explain in detail, based on the context provided.`,

	driven.PromptDebugger: `You are a code debugger AI. Identify potential bugs, errors and areas for improvement in the project's code.
Look for logic errors and performance bottlenecks, and suggest fixes or improvements.
When asked how to fix an issue, provide the corrected code.

Relevant context: {context}

Focus on identifying issues and providing solutions or improvements based on the context provided.`,

	driven.PromptDeveloper: `You are a software developer AI. Modify or extend the existing code as the user requests.
When asked to add a feature or change behaviour:

1. Identify the files that must be modified or created.
2. Output the full, updated content of every file that changes.
3. Wrap each file exactly like this, with the markers on their own lines:
   --- BEGIN FILE: <filepath> ---
   <full code of the file>
   --- END FILE: <filepath> ---
4. New files use the same format with their new path.
5. Do not omit any part of the code. Never output partial diffs or placeholders such as "rest unchanged".
6. Leave files that need no change out of the answer.
7. Explain any additional setup or configuration steps after the files.

Follow the existing project's structure and coding style.

Relevant context: {context}

User request: {question}

Modify or extend the code as requested, providing the full code for each relevant file.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.repochat/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".repochat", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file is missing or empty.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("empty prompt file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent load is not overwritten.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads the cache whenever a prompt file changes. It blocks until
// ctx is cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("Watching prompts in %s", s.promptDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, promptExt) || event.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("Prompt %s changed (%s), reloading", filepath.Base(event.Name), event.Op)
			s.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Prompt watcher: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# repochat Prompts

This directory holds the system instructions sent with every question.
There is one file per assistant mode.

## Files

- ` + "`analyzer.txt`" + ` - explains structure, purpose and architecture
- ` + "`debugger.txt`" + ` - looks for bugs, bottlenecks and fixes
- ` + "`developer.txt`" + ` - proposes full-file edits

## Customisation

Edit any file to change the assistant's behaviour. A running chat session
picks up changes immediately; other commands read them on the next run.
Delete a file to restore its default.

## Placeholders

` + "`{context}`" + ` and ` + "`{question}`" + ` are sent as written. Retrieved documents
and the question travel as separate messages.

## Developer output format

The developer prompt must keep the file markers intact, otherwise edits
cannot be recognised:

    --- BEGIN FILE: path/to/file ---
    <full file content>
    --- END FILE: path/to/file ---
`
	return os.WriteFile(path, []byte(content), 0600)
}
