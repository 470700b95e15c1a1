package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the registered commands, indexed by name and alias.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command // canonical name -> command
	index    map[string]Command // lowercased name or alias -> command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		index:    make(map[string]Command),
	}
}

// Register adds a command to the registry. Names and aliases must be unique.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, k := range keys {
		if _, exists := r.index[strings.ToLower(k)]; exists {
			return fmt.Errorf("command '%s' already registered", k)
		}
	}
	r.commands[cmd.Name()] = cmd
	for _, k := range keys {
		r.index[strings.ToLower(k)] = cmd
	}
	return nil
}

// Get returns a command by name or alias, case-insensitively.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.index[strings.ToLower(name)]
	return cmd, exists
}

// GetAll returns all registered commands sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// Lookup resolves a request to a command. A plain request must equal a name
// or alias once trimmed. A request starting with "/" is split into a name and
// arguments, e.g. "/tasks cancel <id>".
func (r *Registry) Lookup(request string) (Command, []string, bool) {
	request = strings.TrimSpace(request)
	if strings.HasPrefix(request, "/") {
		parts := strings.Fields(strings.TrimPrefix(request, "/"))
		if len(parts) == 0 {
			return nil, nil, false
		}
		cmd, ok := r.Get(parts[0])
		return cmd, parts[1:], ok
	}
	cmd, ok := r.Get(request)
	return cmd, nil, ok
}
