package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Handler runs one command with the arguments that follow its name.
type Handler func(ctx context.Context, args []string) error

// Kind separates commands that change state from read-only queries.
type Kind int

const (
	KindCommand Kind = iota
	KindQuery
)

type entry struct {
	name    string
	usage   string
	kind    Kind
	handler Handler
}

// ErrUnknownCommand is returned for names nothing was registered under.
type ErrUnknownCommand struct {
	Name string
}

func (e *ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// Dispatcher routes argv to handlers. Names may have two words, such as
// "products list"; the longest registered match wins.
type Dispatcher struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{entries: make(map[string]entry)}
}

func (d *Dispatcher) RegisterCommand(name, usage string, handler Handler) {
	d.register(entry{name: name, usage: usage, kind: KindCommand, handler: handler})
}

func (d *Dispatcher) RegisterQuery(name, usage string, handler Handler) {
	d.register(entry{name: name, usage: usage, kind: KindQuery, handler: handler})
}

func (d *Dispatcher) register(e entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[e.name] = e
}

// Execute resolves args and runs the matching handler.
func (d *Dispatcher) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return &ErrUnknownCommand{}
	}
	d.mu.RLock()
	var (
		match entry
		found bool
		rest  []string
	)
	if len(args) >= 2 {
		match, found = d.entries[args[0]+" "+args[1]]
		rest = args[2:]
	}
	if !found {
		match, found = d.entries[args[0]]
		rest = args[1:]
	}
	d.mu.RUnlock()

	if !found {
		name := args[0]
		if len(args) >= 2 && d.isGroup(args[0]) {
			name = args[0] + " " + args[1]
		}
		return &ErrUnknownCommand{Name: name}
	}
	return match.handler(ctx, rest)
}

// Usage writes commands then queries, each sorted by name.
func (d *Dispatcher) Usage(w io.Writer) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, kind := range []Kind{KindCommand, KindQuery} {
		if kind == KindCommand {
			fmt.Fprintln(w, "Commands:")
		} else {
			fmt.Fprintln(w, "Queries:")
		}
		for _, name := range names {
			e := d.entries[name]
			if e.kind != kind {
				continue
			}
			fmt.Fprintf(w, "  %-18s %s\n", name, e.usage)
		}
	}
}

func (d *Dispatcher) isGroup(prefix string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for name := range d.entries {
		if strings.HasPrefix(name, prefix+" ") {
			return true
		}
	}
	return false
}
